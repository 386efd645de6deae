package tokens

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/staffolio/staffolio/internal/dbx"
)

// sessionKey is the single row the cache uses; the table is key/value so
// future client-side state can share it.
const sessionKey = "session"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM tokens WHERE key = ?`, sessionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cached token: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, sessionKey, token)
	if err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to clear cached token: %w", err)
	}
	return nil
}
