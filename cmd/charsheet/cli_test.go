package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/store"
)

// setupTestEnv creates an env over an in-memory store.
func setupTestEnv(t *testing.T) (*appEnv, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StorageBackend = config.BackendMemory
	out := &bytes.Buffer{}
	return &appEnv{
		cfg:     cfg,
		baseDir: t.TempDir(),
		records: store.NewRecords(store.NewMemoryStore(), cfg.StorageKey),
		log:     logger.NewNop(),
		in:      strings.NewReader(""),
		out:     out,
	}, out
}

// run executes args and returns what the command printed.
func run(t *testing.T, env *appEnv, out *bytes.Buffer, args ...string) (string, error) {
	t.Helper()
	out.Reset()
	err := newCLIApp(env).Run(append([]string{"charsheet"}, args...))
	return out.String(), err
}

// saveOne stores a character through the CLI and returns it.
func saveOne(t *testing.T, env *appEnv, out *bytes.Buffer, first, last string) character.Character {
	t.Helper()
	got, err := run(t, env, out, "save", "--first", first, "--last", last)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var c character.Character
	if err := json.Unmarshal([]byte(got), &c); err != nil {
		t.Fatalf("failed to parse save output: %v\n%s", err, got)
	}
	return c
}

func TestIsYes(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES", true},
		{"  yes  \n", true},
		{"n", false},
		{"", false},
		{"yep", false},
	}
	for _, tt := range tests {
		if got := isYes(tt.input); got != tt.expected {
			t.Errorf("isYes(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestCLISave(t *testing.T) {
	env, out := setupTestEnv(t)

	got, err := run(t, env, out, "save", "--first", "Ada", "--last", "Lovelace", "--age", "36", "--height", "65.5", "--str", "12", "--dex", "abc")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var c character.Character
	if err := json.Unmarshal([]byte(got), &c); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if c.ID == "" {
		t.Error("expected an id")
	}
	if c.Age == nil || *c.Age != 36 {
		t.Errorf("age = %v, want 36", c.Age)
	}
	if c.Height == nil || *c.Height != 65.5 {
		t.Errorf("height = %v, want 65.5", c.Height)
	}
	if c.Str == nil || *c.Str != 12 {
		t.Errorf("str = %v, want 12", c.Str)
	}
	if c.Dex != nil {
		t.Errorf("dex = %v, want unset", *c.Dex)
	}

	stored, err := env.records.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != c.ID {
		t.Fatalf("stored = %+v, want one record with id %s", stored, c.ID)
	}
}

func TestCLISaveOverwrite(t *testing.T) {
	env, out := setupTestEnv(t)
	first := saveOne(t, env, out, "Ada", "Lovelace")

	if _, err := run(t, env, out, "save", "--id", first.ID, "--first", "Ada", "--last", "King"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	stored, _ := env.records.LoadAll(context.Background())
	if len(stored) != 1 {
		t.Fatalf("expected 1 record, got %d", len(stored))
	}
	if stored[0].ID != first.ID || stored[0].LastName != "King" {
		t.Errorf("stored = %+v, want %s renamed to King", stored[0], first.ID)
	}
}

func TestCLISaveUnknownID(t *testing.T) {
	env, out := setupTestEnv(t)

	_, err := run(t, env, out, "save", "--id", "nope", "--first", "A", "--last", "B")
	if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	stored, _ := env.records.LoadAll(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected nothing stored, got %d", len(stored))
	}
}

func TestCLISaveMissingName(t *testing.T) {
	env, out := setupTestEnv(t)

	if _, err := run(t, env, out, "save", "--last", "Lovelace"); err == nil {
		t.Fatal("expected error for missing --first")
	}
	stored, _ := env.records.LoadAll(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected nothing stored, got %d", len(stored))
	}
}

func TestCLIList(t *testing.T) {
	env, out := setupTestEnv(t)
	a := saveOne(t, env, out, "Ada", "Lovelace")
	b := saveOne(t, env, out, "Grace", "Hopper")

	got, err := run(t, env, out, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var items []listItem
	if err := json.Unmarshal([]byte(got), &items); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[0].Name != "Ada Lovelace" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != b.ID || items[1].Name != "Grace Hopper" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestCLIShow(t *testing.T) {
	env, out := setupTestEnv(t)
	a := saveOne(t, env, out, "Ada", "Lovelace")

	t.Run("existing", func(t *testing.T) {
		got, err := run(t, env, out, "show", a.ID)
		if err != nil {
			t.Fatalf("show failed: %v", err)
		}
		var res struct {
			Character character.Character `json:"character"`
			Display   struct {
				Greeting string `json:"greeting"`
				Age      string `json:"age"`
			} `json:"display"`
		}
		if err := json.Unmarshal([]byte(got), &res); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if res.Character.ID != a.ID {
			t.Errorf("id = %s, want %s", res.Character.ID, a.ID)
		}
		if res.Display.Greeting != "Ada Lovelace!" {
			t.Errorf("greeting = %q", res.Display.Greeting)
		}
		if res.Display.Age != "--" {
			t.Errorf("age = %q, want --", res.Display.Age)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := run(t, env, out, "show", "nope")
		if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("no id", func(t *testing.T) {
		_, err := run(t, env, out, "show")
		if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Fatalf("expected INVALID_REQUEST, got %v", err)
		}
	})
}

func TestCLIDelete(t *testing.T) {
	t.Run("with --yes", func(t *testing.T) {
		env, out := setupTestEnv(t)
		a := saveOne(t, env, out, "Ada", "Lovelace")

		got, err := run(t, env, out, "delete", "--yes", a.ID)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !strings.Contains(got, `"deleted": true`) {
			t.Errorf("unexpected output: %s", got)
		}
		stored, _ := env.records.LoadAll(context.Background())
		if len(stored) != 0 {
			t.Errorf("expected empty store, got %d", len(stored))
		}
	})

	t.Run("confirmed on stdin", func(t *testing.T) {
		env, out := setupTestEnv(t)
		a := saveOne(t, env, out, "Ada", "Lovelace")
		env.in = strings.NewReader("y\n")

		if _, err := run(t, env, out, "delete", a.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		stored, _ := env.records.LoadAll(context.Background())
		if len(stored) != 0 {
			t.Errorf("expected empty store, got %d", len(stored))
		}
	})

	t.Run("declined", func(t *testing.T) {
		env, out := setupTestEnv(t)
		a := saveOne(t, env, out, "Ada", "Lovelace")
		env.in = strings.NewReader("n\n")

		got, err := run(t, env, out, "delete", a.ID)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !strings.Contains(got, `"deleted": false`) {
			t.Errorf("unexpected output: %s", got)
		}
		stored, _ := env.records.LoadAll(context.Background())
		if len(stored) != 1 {
			t.Errorf("expected record kept, got %d", len(stored))
		}
	})

	t.Run("missing", func(t *testing.T) {
		env, out := setupTestEnv(t)
		_, err := run(t, env, out, "delete", "--yes", "nope")
		if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestCLIImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	t.Run("attach to existing", func(t *testing.T) {
		env, out := setupTestEnv(t)
		a := saveOne(t, env, out, "Ada", "Lovelace")
		path := filepath.Join(t.TempDir(), "ada.png")
		if err := os.WriteFile(path, png, 0600); err != nil {
			t.Fatal(err)
		}

		got, err := run(t, env, out, "image", "--id", a.ID, path)
		if err != nil {
			t.Fatalf("image failed: %v", err)
		}
		if !strings.Contains(got, `"persisted": true`) {
			t.Errorf("unexpected output: %s", got)
		}
		stored, _ := env.records.LoadAll(context.Background())
		if len(stored) != 1 || !strings.HasPrefix(stored[0].Image, "data:image/png;base64,") {
			t.Fatalf("image not stored: %+v", stored)
		}
	})

	t.Run("no selection is not persisted", func(t *testing.T) {
		env, out := setupTestEnv(t)
		path := filepath.Join(t.TempDir(), "x.png")
		if err := os.WriteFile(path, png, 0600); err != nil {
			t.Fatal(err)
		}

		got, err := run(t, env, out, "image", path)
		if err != nil {
			t.Fatalf("image failed: %v", err)
		}
		if !strings.Contains(got, `"persisted": false`) {
			t.Errorf("unexpected output: %s", got)
		}
		stored, _ := env.records.LoadAll(context.Background())
		if len(stored) != 0 {
			t.Errorf("expected nothing stored, got %d", len(stored))
		}
	})

	t.Run("unreadable file keeps existing picture", func(t *testing.T) {
		env, out := setupTestEnv(t)
		a := saveOne(t, env, out, "Ada", "Lovelace")
		path := filepath.Join(t.TempDir(), "ada.png")
		if err := os.WriteFile(path, png, 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := run(t, env, out, "image", "--id", a.ID, path); err != nil {
			t.Fatalf("first image failed: %v", err)
		}
		before, _ := env.records.LoadAll(context.Background())

		// A directory passes the size check but cannot be read as a file.
		got, err := run(t, env, out, "image", "--id", a.ID, t.TempDir())
		if err == nil {
			t.Fatalf("expected error for unreadable image, got output %s", got)
		}
		after, _ := env.records.LoadAll(context.Background())
		if len(after) != 1 || after[0].Image != before[0].Image {
			t.Errorf("stored image changed after failed upload")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		env, out := setupTestEnv(t)
		_, err := run(t, env, out, "image", filepath.Join(t.TempDir(), "nope.png"))
		if err == nil || !strings.Contains(err.Error(), "[FILE_NOT_FOUND]") {
			t.Fatalf("expected FILE_NOT_FOUND, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		env, out := setupTestEnv(t)
		env.cfg.MaxImageBytes = 4
		path := filepath.Join(t.TempDir(), "big.png")
		if err := os.WriteFile(path, png, 0600); err != nil {
			t.Fatal(err)
		}
		_, err := run(t, env, out, "image", path)
		if err == nil || !strings.Contains(err.Error(), "[IMAGE_TOO_LARGE]") {
			t.Fatalf("expected IMAGE_TOO_LARGE, got %v", err)
		}
	})
}

func TestCLIExportImport(t *testing.T) {
	env, out := setupTestEnv(t)
	a := saveOne(t, env, out, "Ada", "Lovelace")
	saveOne(t, env, out, "Grace", "Hopper")

	got, err := run(t, env, out, "export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var exported struct {
		Path  string `json:"path"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(got), &exported); err != nil {
		t.Fatalf("failed to parse export output: %v", err)
	}
	if exported.Count != 2 {
		t.Fatalf("count = %d, want 2", exported.Count)
	}

	// Drop one and bring it back.
	if _, err := run(t, env, out, "delete", "--yes", a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err = run(t, env, out, "import", "--mode", "skip", exported.Path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	var imported struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(got), &imported); err != nil {
		t.Fatalf("failed to parse import output: %v", err)
	}
	if imported.Imported != 1 || imported.Skipped != 1 {
		t.Errorf("imported=%d skipped=%d, want 1 and 1", imported.Imported, imported.Skipped)
	}

	stored, _ := env.records.LoadAll(context.Background())
	if len(stored) != 2 {
		t.Errorf("expected 2 records after import, got %d", len(stored))
	}
}

func TestCLIImportBadMode(t *testing.T) {
	env, out := setupTestEnv(t)
	_, err := run(t, env, out, "import", "--mode", "merge", filepath.Join(env.baseDir, "x.jsonl"))
	if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
}
