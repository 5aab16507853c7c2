package service_test

import (
	"testing"

	"go.uber.org/zap"

	"option_chain/internal/models"
	"option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
	healthService "option_chain/internal/modules/health/service"
	storeService "option_chain/internal/modules/store/service"
)

const loginURL = "http://localhost:4000/api/fyers/login"

func leg(symbol string, strike float64, ot models.OptionType, ltp, oi, volume float64) models.Record {
	return models.Record{
		Symbol:      symbol,
		StrikePrice: strike,
		OptionType:  ot,
		Quote:       map[string]float64{"ltp": ltp, "oi": oi, "volume": volume},
	}
}

func entry(seq uint64, r models.Record) models.Entry {
	return models.Entry{Record: r, Seq: seq}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Feed.LoginURL = loginURL
	cfg.Formula.Default = config.DefaultFormula
	return cfg
}

type fixture struct {
	svc   *service.Service
	store *storeService.Store
	state *healthService.State
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testConfig()
	st := storeService.NewStore()
	state := healthService.NewState()
	svc := service.NewService(zap.NewNop(), cfg, st, state, service.NewAssembler(cfg))
	return fixture{svc: svc, store: st, state: state}
}
