package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"BlackJack/internal/game/money"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// 列类型 numeric(18,2)，余额非负由 CHECK 约束兜底。
const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    player_id text PRIMARY KEY,
    balance   numeric(18,2) NOT NULL CHECK (balance >= 0)
)`

type pgBank struct {
	db *sql.DB
}

// NewPostgresBank returns a Bank backed by the accounts table, creating it
// if missing.
func NewPostgresBank(db *sql.DB) (Bank, error) {
	if _, err := db.Exec(accountsSchema); err != nil {
		return nil, fmt.Errorf("bank: init schema: %w", err)
	}
	return &pgBank{db: db}, nil
}

func (b *pgBank) CreateAccount(ctx context.Context, playerID string, starting money.Money) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO accounts (player_id, balance) VALUES ($1, $2)
		 ON CONFLICT (player_id) DO NOTHING`,
		playerID, starting.Decimal().String())
	return err
}

func (b *pgBank) LoadBalance(ctx context.Context, playerID string) (money.Money, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE player_id = $1`, playerID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return money.Zero, ErrUnknownPlayer
	}
	if err != nil {
		return money.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return money.Zero, err
	}
	return money.FromDecimal(d), nil
}

func (b *pgBank) AdjustBalance(ctx context.Context, playerID string, delta money.Money) (money.Money, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $2
		 WHERE player_id = $1
		 RETURNING balance`,
		playerID, delta.Decimal().String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return money.Zero, ErrUnknownPlayer
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "check_violation" {
		return money.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return money.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return money.Zero, err
	}
	return money.FromDecimal(d), nil
}
