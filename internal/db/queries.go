package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/hpungsan/charsheet/internal/errors"
)

// GetSlot returns the blob stored under key. found is false when the slot is empty.
func GetSlot(ctx context.Context, db *sql.DB, key string) (value []byte, found bool, err error) {
	row := db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.NewStorage("read", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// PutSlot overwrites the blob stored under key. Last writer wins.
func PutSlot(ctx context.Context, db *sql.DB, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return errors.NewStorage("write", err)
	}
	return nil
}

// DeleteSlot empties the slot. Deleting an empty slot is not an error.
func DeleteSlot(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return errors.NewStorage("clear", err)
	}
	return nil
}
