package transfer

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
)

// ImportMode controls what happens when an imported id already exists.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // import nothing if any line fails or collides
	ImportModeReplace ImportMode = "replace" // overwrite existing ids in place
	ImportModeSkip    ImportMode = "skip"    // keep existing ids
)

// maxLineBytes bounds a single export line; images make lines long.
const maxLineBytes = 64 << 20

// ImportInput contains parameters for Import.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of Import.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import merges an export file into repo with a single SaveAll.
// New ids are appended in file order.
func Import(ctx context.Context, repo Repository, cfg *config.Config, baseDir string, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	switch input.Mode {
	case ImportModeError, ImportModeReplace, ImportModeSkip:
	default:
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg, baseDir); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, out := parseExport(file)
	if input.Mode == ImportModeError && len(out.Errors) > 0 {
		return out, nil
	}

	existing, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	next := existing
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		_, collides := character.Find(next, rec.c.ID)
		// A repeated id within the file always collides with its earlier line
		collides = collides || seen[rec.c.ID]
		seen[rec.c.ID] = true

		switch {
		case !collides || input.Mode == ImportModeReplace:
			next = character.Upsert(next, rec.c)
			out.Imported++
		case input.Mode == ImportModeSkip:
			out.Skipped++
		default:
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      rec.c.ID,
				Code:    "ID_COLLISION",
				Message: fmt.Sprintf("character with id %q already exists", rec.c.ID),
			})
			return &ImportOutput{Errors: out.Errors}, nil
		}
	}

	if out.Imported == 0 {
		return out, nil
	}
	if err := repo.SaveAll(ctx, next); err != nil {
		return nil, err
	}
	return out, nil
}

type lineRecord struct {
	line int
	c    character.Character
}

func parseExport(r io.Reader) ([]lineRecord, *ImportOutput) {
	out := &ImportOutput{Errors: []ImportError{}}
	var records []lineRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var header ExportHeader
		if err := json.Unmarshal(line, &header); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if header.CharsheetExport {
			continue
		}

		var c character.Character
		if err := json.Unmarshal(line, &c); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid character: %v", err),
			})
			continue
		}
		if c.ID == "" {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: "missing id field",
			})
			continue
		}
		records = append(records, lineRecord{line: lineNum, c: c})
	}

	if err := scanner.Err(); err != nil {
		out.Errors = append(out.Errors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	return records, out
}
