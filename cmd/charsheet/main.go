package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/manager"
	"github.com/hpungsan/charsheet/internal/mcp"
	"github.com/hpungsan/charsheet/internal/store"
	"github.com/hpungsan/charsheet/internal/upload"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "show": true, "save": true, "delete": true, "image": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _                    _           _
  / __| |_  __ _ _ _ ___ __| |_  ___ __| |_
 | (__| ' \/ _' | '_(_-</ _| ' \/ -_) -_)  _|
  \___|_||_\__,_|_| /__/\__|_||_\___\___|\__|

  Character sheet editor

  Usage: charsheet <command> [options]
         charsheet serve
         charsheet --help

  MCP server mode requires piped input.`)
}

// baseDir returns $CHARSHEET_HOME, or ~/.charsheet.
func baseDir() (string, error) {
	if dir := os.Getenv("CHARSHEET_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".charsheet"), nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need no storage
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	base, err := baseDir()
	if err != nil {
		fatal("%v", err)
	}
	if err := os.MkdirAll(base, 0700); err != nil {
		fatal("failed to create %s: %v", base, err)
	}

	cfg, err := config.Load(base)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "charsheet"})
	if err != nil {
		fatal("failed to create logger: %v", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	blobs, closer, err := store.Open(ctx, cfg, base)
	if err != nil {
		fatal("failed to open storage: %v", err)
	}
	defer closer.Close()
	records := store.NewRecords(blobs, cfg.StorageKey)
	log.Debug("storage opened", zap.String("backend", cfg.StorageBackend), zap.String("key", cfg.StorageKey))

	env := &appEnv{
		cfg:     cfg,
		baseDir: base,
		records: records,
		log:     log,
		in:      os.Stdin,
		out:     os.Stdout,
	}

	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'charsheet --help' for usage.\n")
		os.Exit(1)
	}

	view := manager.NewStateSurface()
	mgr, err := manager.New(ctx, records, manager.Options{
		Surface:   view,
		Confirmer: manager.ContextConfirmer{},
		Decoder:   upload.DataURLDecoder{MaxBytes: cfg.MaxImageBytes},
		Logger:    log,
	})
	if err != nil {
		fatal("failed to load characters: %v", err)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if err := mcp.Run(mcp.Deps{Manager: mgr, View: view, Records: records, Config: cfg, BaseDir: base}, Version); err != nil {
		fatal("%v", err)
	}
}
