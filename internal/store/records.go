package store

import (
	"context"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/errors"
	"github.com/hpungsan/charsheet/internal/metrics"
)

// Records reads and writes the whole character collection as one blob.
type Records struct {
	blobs BlobStore
	key   string
}

func NewRecords(blobs BlobStore, key string) *Records {
	return &Records{blobs: blobs, key: key}
}

// Key returns the slot name.
func (r *Records) Key() string {
	return r.key
}

// LoadAll returns the stored collection. An absent or empty slot is an empty
// collection; a malformed blob is an ErrMalformedStore error.
func (r *Records) LoadAll(ctx context.Context) ([]character.Character, error) {
	blob, err := r.blobs.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	chars, err := character.DecodeList(blob)
	if err != nil {
		return nil, errors.NewMalformedStore(r.key, err)
	}
	return chars, nil
}

// SaveAll serializes the collection and overwrites the slot.
func (r *Records) SaveAll(ctx context.Context, chars []character.Character) error {
	blob, err := character.EncodeList(chars)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := r.blobs.Set(ctx, r.key, blob); err != nil {
		metrics.StoreWriteErrorsTotal.Inc()
		return err
	}
	metrics.StoreWritesTotal.Inc()
	return nil
}

// Clear empties the slot.
func (r *Records) Clear(ctx context.Context) error {
	return r.blobs.Clear(ctx, r.key)
}
