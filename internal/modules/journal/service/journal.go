package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// PgJournal пишет историю сигналов и переключений гейта в postgres.
// Запись best-effort: ошибка журнала логируется и не рвёт обработку.
type PgJournal struct {
	tx db.TxManager
}

func NewPgJournal(tx db.TxManager) *PgJournal {
	return &PgJournal{tx: tx}
}

// Migrate создаёт таблицы журнала. Идемпотентно, вызывается на старте.
func (j *PgJournal) Migrate(ctx context.Context) error {
	return j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			CREATE TABLE IF NOT EXISTS signal_events (
				id          UUID PRIMARY KEY,
				received_at TIMESTAMPTZ NOT NULL,
				kind        TEXT NOT NULL,
				pair        TEXT NOT NULL,
				action      TEXT NOT NULL,
				volatility  DOUBLE PRECISION NOT NULL,
				price_action DOUBLE PRECISION NOT NULL,
				rank        INT NOT NULL,
				accepted    BOOLEAN NOT NULL,
				reason      TEXT NOT NULL DEFAULT ''
			)`)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctxTx, `
			CREATE TABLE IF NOT EXISTS gate_transitions (
				id          UUID PRIMARY KEY,
				happened_at TIMESTAMPTZ NOT NULL,
				allowed     BOOLEAN NOT NULL,
				profile     TEXT NOT NULL
			)`)
		return err
	})
}

func (j *PgJournal) RecordSignal(ctx context.Context, sig *models.Signal, accepted bool, reason string) {
	err := j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO signal_events (id, received_at, kind, pair, action, volatility, price_action, rank, accepted, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), sig.ReceivedAt, sig.Kind, sig.Pair, string(sig.Action),
			sig.Volatility, sig.PriceAction, sig.Rank, accepted, reason,
		)
		return err
	})
	if err != nil {
		logger.Error("journal: recording signal %s %s: %s", sig.Action, sig.Pair, err)
	}
}

func (j *PgJournal) RecordGate(ctx context.Context, allowed bool, profile models.DCAProfile) {
	err := j.tx.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO gate_transitions (id, happened_at, allowed, profile)
			VALUES ($1, $2, $3, $4)`,
			uuid.New(), time.Now(), allowed, string(profile),
		)
		return err
	})
	if err != nil {
		logger.Error("journal: recording gate transition: %s", err)
	}
}

// NopJournal — журнал без хранилища, когда DSN не задан.
type NopJournal struct{}

func (NopJournal) RecordSignal(context.Context, *models.Signal, bool, string) {}

func (NopJournal) RecordGate(context.Context, bool, models.DCAProfile) {}
