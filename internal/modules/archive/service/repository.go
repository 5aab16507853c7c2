package service

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"option_chain/internal/models"
	"option_chain/pkg/db"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS option_quotes (
	symbol       TEXT PRIMARY KEY,
	strike_price DOUBLE PRECISION NOT NULL,
	option_type  TEXT NOT NULL,
	quote        JSONB NOT NULL,
	seq          BIGINT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	upsertSQL = `
INSERT INTO option_quotes (symbol, strike_price, option_type, quote, seq, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (symbol) DO UPDATE SET
	strike_price = EXCLUDED.strike_price,
	option_type  = EXCLUDED.option_type,
	quote        = EXCLUDED.quote,
	seq          = EXCLUDED.seq,
	updated_at   = EXCLUDED.updated_at`

	deleteAllSQL = `DELETE FROM option_quotes`

	selectAllSQL = `SELECT symbol, strike_price, option_type, quote FROM option_quotes ORDER BY seq`
)

// Repository — последнее известное состояние стора в Postgres.
type Repository struct {
	tx db.TxManager
}

func NewRepository(tx db.TxManager) *Repository {
	return &Repository{tx: tx}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, createTableSQL)
		return errors.Wrap(err, "create option_quotes")
	})
}

// Save пишет записи одной транзакцией; truncate сначала очищает таблицу (после ресинка).
func (r *Repository) Save(ctx context.Context, entries []models.Entry, truncate bool) error {
	return r.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		if truncate {
			if _, err := tx.Exec(ctx, deleteAllSQL); err != nil {
				return errors.Wrap(err, "delete option_quotes")
			}
		}
		for _, e := range entries {
			quote, err := sonic.Marshal(e.Quote)
			if err != nil {
				return errors.Wrapf(err, "marshal quote %s", e.Symbol)
			}
			if _, err := tx.Exec(ctx, upsertSQL,
				e.Symbol, e.StrikePrice, string(e.OptionType), quote, int64(e.Seq),
			); err != nil {
				return errors.Wrapf(err, "upsert %s", e.Symbol)
			}
		}
		return nil
	})
}

// LoadAll — записи в порядке их последнего обновления.
func (r *Repository) LoadAll(ctx context.Context) ([]models.Record, error) {
	var out []models.Record
	err := r.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		rows, err := tx.Query(ctx, selectAllSQL)
		if err != nil {
			return errors.Wrap(err, "select option_quotes")
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec        models.Record
				optionType string
				quote      []byte
			)
			if err := rows.Scan(&rec.Symbol, &rec.StrikePrice, &optionType, &quote); err != nil {
				return errors.Wrap(err, "scan option_quotes")
			}
			rec.OptionType = models.OptionType(optionType)
			if err := sonic.Unmarshal(quote, &rec.Quote); err != nil {
				return errors.Wrapf(err, "unmarshal quote %s", rec.Symbol)
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	return out, err
}
