package transactions

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository persists state in a local SQLite file. Save rewrites both
// tables in one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Load reads records and categories in stored order.
func (r *SQLiteRepository) Load(ctx context.Context) (*State, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT identifier, date, amount, description, category,
		       payment_method, counterparty, installments, source_file
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	state := &State{Transactions: []Transaction{}}
	for rows.Next() {
		var t Transaction
		var amount string
		if err := rows.Scan(&t.Identifier, &t.Date, &amount, &t.Description, &t.Category,
			&t.PaymentMethod, &t.Counterparty, &t.Installments, &t.SourceFile); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for %s: %w", t.Identifier, err)
		}
		state.Transactions = append(state.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	catRows, err := r.db.QueryContext(ctx, `SELECT label FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var label string
		if err := catRows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		state.Categories = append(state.Categories, label)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return state, nil
}

// Save replaces both tables with state.
func (r *SQLiteRepository) Save(ctx context.Context, state State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	insertTx, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (position, identifier, date, amount, description, category,
		                          payment_method, counterparty, installments, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertTx.Close()

	for i, t := range state.Transactions {
		if _, err := insertTx.ExecContext(ctx, i, t.Identifier, t.Date, t.Amount.String(), t.Description,
			t.Category, t.PaymentMethod, t.Counterparty, t.Installments, t.SourceFile); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.Identifier, err)
		}
	}

	for i, label := range state.Categories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (position, label) VALUES (?, ?)`, i, label); err != nil {
			return fmt.Errorf("failed to insert category %s: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
