// Package transfer moves the character collection to and from JSONL files.
package transfer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-json"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
)

// SchemaVersion is written to the header line of every export.
const SchemaVersion = "1"

// Repository is the collection being exported from or imported into.
type Repository interface {
	LoadAll(ctx context.Context) ([]character.Character, error)
	SaveAll(ctx context.Context, chars []character.Character) error
}

// ExportInput contains parameters for Export.
type ExportInput struct {
	Path string // optional, default: <base>/exports/characters-<timestamp>.jsonl
}

// ExportOutput contains the result of Export.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	CharsheetExport bool   `json:"_charsheet_export"`
	SchemaVersion   string `json:"schema_version"`
	ExportedAt      int64  `json:"exported_at"`
}

// Export writes the header and one character per line, in collection order.
// The file is written to a temp path and renamed, so an existing file survives a failure.
func Export(ctx context.Context, repo Repository, cfg *config.Config, baseDir string, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(ExportsDir(baseDir), fmt.Sprintf("characters-%s.jsonl", now.Format("2006-01-02T150405")))
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, baseDir); err != nil {
		return nil, err
	}

	chars, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	header := ExportHeader{CharsheetExport: true, SchemaVersion: SchemaVersion, ExportedAt: now.Unix()}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, c := range chars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := enc.Encode(c); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewConflict("export destination already exists")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{Path: exportPath, Count: len(chars), ExportedAt: header.ExportedAt}, nil
}
