package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/charsheet/internal/errors"
)

// FileStore keeps each slot in dir/<key>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorage("read", err)
	}
	return data, nil
}

// Set writes to a temp file in the same directory and renames it over the slot,
// so a crashed write never leaves a truncated blob behind.
func (s *FileStore) Set(_ context.Context, key string, blob []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return errors.NewStorage("write", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return errors.NewStorage("write", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorage("write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorage("write", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return errors.NewStorage("write", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context, key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return errors.NewStorage("clear", err)
	}
	return nil
}
