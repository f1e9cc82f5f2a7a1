package store

import (
	"context"
	"database/sql"

	"github.com/hpungsan/charsheet/internal/db"
)

// SQLiteStore keeps slots as rows of the slots table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, found, err := db.GetSlot(ctx, s.db, key)
	if err != nil || !found {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, blob []byte) error {
	return db.PutSlot(ctx, s.db, key, blob)
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	return db.DeleteSlot(ctx, s.db, key)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
