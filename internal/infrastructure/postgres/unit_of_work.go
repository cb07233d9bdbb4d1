package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"contas/internal/domain/card"
	"contas/internal/domain/charge"
)

// UnitOfWork implements charge.UnitOfWork over a single database
// transaction. The function receives repositories bound to that
// transaction; when it returns an error everything rolls back, including
// the ledger write on the locked card row.
type UnitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a new transactional unit of work
func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(r charge.Repos) error) error {
	return runInTx(ctx, u.db, func(q txQuerier) error {
		return fn(charge.Repos{
			Cards:      &CardRepository{db: q},
			Charges:    &ChargeRepository{db: q},
			Bills:      &BillRepository{db: q},
			Categories: &CategoryRepository{db: q},
		})
	})
}

// CardUnitOfWork implements card.UnitOfWork for the ledger writers that run
// outside the charge lifecycle: limit recalculation on card updates and
// invoice payments. The FOR UPDATE lock taken inside the transaction
// serializes them against concurrent charge operations on the same card.
type CardUnitOfWork struct {
	db *DB
}

// NewCardUnitOfWork creates a new transactional unit of work for card
// ledger writes
func NewCardUnitOfWork(db *DB) *CardUnitOfWork {
	return &CardUnitOfWork{db: db}
}

func (u *CardUnitOfWork) Do(ctx context.Context, fn func(cards card.Repository, usage card.UsageSource) error) error {
	return runInTx(ctx, u.db, func(q txQuerier) error {
		return fn(&CardRepository{db: q}, &ChargeRepository{db: q})
	})
}

func runInTx(ctx context.Context, db *DB, fn func(q txQuerier) error) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(txQuerier{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Rollback failed after %v: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
