package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store holds the tenant-scoped business collections. Every read and write is
// filtered by user_id; there is no unscoped code path.
type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return &Store{db: db}, nil
}

var entityTables = []string{"clients", "projects", "invoices", "payments", "expenses"}

func (s *Store) AutoMigrate(ctx context.Context) error {
	for _, table := range entityTables {
		query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT
		);`, table)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("run migration for %s: %w", table, err)
		}
		index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user_id ON %s(user_id);`, table, table)
		if _, err := s.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("create index for %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) Clients() *Collection  { return &Collection{db: s.db, table: "clients"} }
func (s *Store) Projects() *Collection { return &Collection{db: s.db, table: "projects"} }
func (s *Store) Payments() *Collection { return &Collection{db: s.db, table: "payments"} }
func (s *Store) Expenses() *Collection { return &Collection{db: s.db, table: "expenses"} }

// Invoices carries extra write-path behavior (totals, paid auto-payment), so it
// wraps the plain collection.
func (s *Store) Invoices() *InvoiceCollection {
	return &InvoiceCollection{
		Collection: Collection{db: s.db, table: "invoices"},
		payments:   s.Payments(),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
