package transfer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
)

func TestValidatePath(t *testing.T) {
	baseDir := t.TempDir()
	exports := ExportsDir(baseDir)
	if err := os.MkdirAll(exports, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	allowed := t.TempDir()
	existing := filepath.Join(exports, "have.jsonl")
	if err := os.WriteFile(existing, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	tests := []struct {
		name     string
		path     string
		mode     PathCheckMode
		wantCode errors.ErrorCode
	}{
		{name: "empty", path: "", wantCode: errors.ErrInvalidRequest},
		{name: "traversal", path: exports + string(filepath.Separator) + ".." + string(filepath.Separator) + "x.jsonl", wantCode: errors.ErrInvalidRequest},
		{name: "wrong extension", path: filepath.Join(exports, "x.json"), wantCode: errors.ErrInvalidRequest},
		{name: "exports dir write", path: filepath.Join(exports, "x.jsonl"), mode: PathCheckWrite},
		{name: "allowed dir write", path: filepath.Join(allowed, "x.jsonl"), mode: PathCheckWrite},
		{name: "subdirectory", path: filepath.Join(exports, "sub", "x.jsonl"), wantCode: errors.ErrInvalidRequest},
		{name: "outside", path: filepath.Join(t.TempDir(), "x.jsonl"), wantCode: errors.ErrInvalidRequest},
		{name: "read missing", path: filepath.Join(exports, "nope.jsonl"), mode: PathCheckRead, wantCode: errors.ErrFileNotFound},
		{name: "read existing", path: existing, mode: PathCheckRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.mode, cfg, baseDir)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidatePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("ValidatePath(%q) = %v, want %s", tt.path, err, tt.wantCode)
			}
		})
	}
}

func TestValidatePath_UnsafeStillRejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.jsonl")
	link := filepath.Join(dir, "link.jsonl")
	if err := os.WriteFile(target, nil, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	if err := ValidatePath(target, PathCheckRead, unsafeConfig(), t.TempDir()); err != nil {
		t.Fatalf("target: %v", err)
	}
	if err := ValidatePath(link, PathCheckRead, unsafeConfig(), t.TempDir()); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("link: %v, want INVALID_REQUEST", err)
	}
}

func TestOpenFileNoFollowRead_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("O_NOFOLLOW is unix only")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.jsonl")
	link := filepath.Join(dir, "link.jsonl")
	if err := os.WriteFile(target, nil, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	if _, err := openFileNoFollowRead(link); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
}
