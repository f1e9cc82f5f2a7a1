package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := DefaultConfig()
	if cfg.StorageBackend != def.StorageBackend {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, def.StorageBackend)
	}
	if cfg.StorageKey != "characters" {
		t.Errorf("StorageKey = %q, want %q", cfg.StorageKey, "characters")
	}
	if cfg.MaxImageBytes != def.MaxImageBytes {
		t.Errorf("MaxImageBytes = %d, want %d", cfg.MaxImageBytes, def.MaxImageBytes)
	}
	if cfg.Port != 8340 {
		t.Errorf("Port = %d, want 8340", cfg.Port)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{"storage_backend": "file", "port": 9000}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != BackendFile {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendFile)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	// Untouched fields keep their defaults
	if cfg.StorageKey != "characters" {
		t.Errorf("StorageKey = %q, want default", cfg.StorageKey)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_FileSlicesAndUnknownKeys(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"),
		`{"max_image_bytes": 1048576, "disabled_tools": ["character_delete"], "theme": "dark"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxImageBytes != 1<<20 {
		t.Errorf("MaxImageBytes = %d, want %d", cfg.MaxImageBytes, 1<<20)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "character_delete" {
		t.Errorf("DisabledTools = %v, want [character_delete]", cfg.DisabledTools)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{"storage_backend": "file", "storage_key": "from-file"}`)

	t.Setenv("CHARSHEET_STORAGE", "redis")
	t.Setenv("CHARSHEET_REDIS_ADDR", "localhost:6380")
	t.Setenv("CHARSHEET_DISABLED_TOOLS", "character_delete, character_clear")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != BackendRedis {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendRedis)
	}
	if cfg.StorageKey != "from-file" {
		t.Errorf("StorageKey = %q, want %q", cfg.StorageKey, "from-file")
	}
	if cfg.RedisAddr != "localhost:6380" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6380")
	}
	if len(cfg.DisabledTools) != 2 || cfg.DisabledTools[1] != "character_clear" {
		t.Errorf("DisabledTools = %v, want [character_delete character_clear]", cfg.DisabledTools)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".env"), "CHARSHEET_PORT=9123\n")
	t.Cleanup(func() { os.Unsetenv("CHARSHEET_PORT") })

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9123 {
		t.Errorf("Port = %d, want 9123", cfg.Port)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("CHARSHEET_PORT", "not-a-number")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load() expected error for non-numeric port")
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		StorageBackend:   BackendSQLite,
		Port:             8340,
		AllowedPaths:     []string{"/a", "/b"},
		AllowUnsafePaths: true,
	}
	overlay := &Config{
		StorageBackend: BackendMemory,
		AllowedPaths:   []string{" /b ", "/c", ""},
	}

	got := Merge(base, overlay)

	if got.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want %q", got.StorageBackend, BackendMemory)
	}
	if got.Port != 8340 {
		t.Errorf("Port = %d, want base value 8340", got.Port)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should stay true when base is true")
	}
	want := []string{"/a", "/b", "/c"}
	if len(got.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got.AllowedPaths, want)
	}
	for i := range want {
		if got.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got.AllowedPaths[i], want[i])
		}
	}
}

func TestMerge_EmptySlicesAreNil(t *testing.T) {
	got := Merge(&Config{}, &Config{DisabledTools: []string{" ", ""}})
	if got.DisabledTools != nil {
		t.Errorf("DisabledTools = %v, want nil", got.DisabledTools)
	}
}

func TestResolveFileDir(t *testing.T) {
	cfg := &Config{FileDir: "slots"}
	if got := cfg.ResolveFileDir("/base"); got != filepath.Join("/base", "slots") {
		t.Errorf("ResolveFileDir() = %q", got)
	}

	abs := t.TempDir()
	cfg.FileDir = abs
	if got := cfg.ResolveFileDir("/base"); got != abs {
		t.Errorf("ResolveFileDir() = %q, want %q", got, abs)
	}
}
