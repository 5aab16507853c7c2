package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option_chain/internal/models"
	"option_chain/internal/modules/health/service"
	storeService "option_chain/internal/modules/store/service"
)

func get(t *testing.T, mux *http.ServeMux, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestMux_Probes(t *testing.T) {
	state := service.NewState()
	mux := NewMux(state, storeService.NewStore())

	code, _ := get(t, mux, "/livez")
	assert.Equal(t, http.StatusOK, code)

	code, _ = get(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	state.SetReady(true)
	code, body := get(t, mux, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body)
}

func TestMux_Healthz(t *testing.T) {
	state := service.NewState()
	store := storeService.NewStore()
	store.Merge(models.Update{Calls: []models.Record{{Symbol: "A", StrikePrice: 1, OptionType: models.OptionCall}}})
	state.SetConnected(true)
	state.TouchMessage(time.Unix(1700000000, 0))

	code, body := get(t, NewMux(state, store), "/healthz")
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		WSConnected  bool  `json:"wsConnected"`
		Records      int   `json:"records"`
		LastTickUnix int64 `json:"lastTickUnix"`
		Connects     int64 `json:"connects"`
	}
	require.NoError(t, sonic.UnmarshalString(body, &resp))
	assert.True(t, resp.WSConnected)
	assert.Equal(t, 1, resp.Records)
	assert.Equal(t, int64(1700000000), resp.LastTickUnix)
	assert.Equal(t, int64(1), resp.Connects)
}

func TestMux_Metrics(t *testing.T) {
	code, body := get(t, NewMux(service.NewState(), storeService.NewStore()), "/metrics")

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "option_chain_stored_records")
}
