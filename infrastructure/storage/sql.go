package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// SQLMedium stores keys in a single kv_store table. It works on SQLite
// (go-sqlite3) and Postgres (lib/pq); only placeholders differ.
type SQLMedium struct {
	db      *sql.DB
	dialect string
}

func NewSQLMedium(db *sql.DB, dialect string) *SQLMedium {
	return &SQLMedium{db: db, dialect: dialect}
}

// OpenSQLite opens (or creates) the SQLite file at path and prepares the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLMedium, error) {
	db, err := sql.Open(DialectSQLite, fmt.Sprintf("file:%s?cache=shared&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite medium: %w", err)
	}
	db.SetMaxOpenConns(1)
	m := NewSQLMedium(db, DialectSQLite)
	if err := m.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// OpenPostgres connects with a lib/pq DSN and prepares the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLMedium, error) {
	db, err := sql.Open(DialectPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres medium: %w", err)
	}
	m := NewSQLMedium(db, DialectPostgres)
	if err := m.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *SQLMedium) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			storage_key TEXT PRIMARY KEY,
			storage_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
	}
	for _, query := range queries {
		if _, err := m.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (m *SQLMedium) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := m.db.QueryRowContext(ctx, m.rebind(`SELECT storage_value FROM kv_store WHERE storage_key = ?`), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (m *SQLMedium) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_store (storage_key, storage_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(storage_key) DO UPDATE SET storage_value = excluded.storage_value, updated_at = excluded.updated_at`
	_, err := m.db.ExecContext(ctx, m.rebind(query), key, value, time.Now().UTC())
	return err
}

func (m *SQLMedium) Remove(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, m.rebind(`DELETE FROM kv_store WHERE storage_key = ?`), key)
	return err
}

func (m *SQLMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = m.db.QueryContext(ctx, `SELECT storage_key FROM kv_store ORDER BY storage_key`)
	} else {
		// substr avoids LIKE escaping; cache prefixes contain '_'
		rows, err = m.db.QueryContext(ctx, m.rebind(`SELECT storage_key FROM kv_store WHERE substr(storage_key, 1, ?) = ? ORDER BY storage_key`), len(prefix), prefix)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (m *SQLMedium) Close() error {
	return m.db.Close()
}

// rebind turns '?' placeholders into $n for Postgres.
func (m *SQLMedium) rebind(query string) string {
	if m.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
