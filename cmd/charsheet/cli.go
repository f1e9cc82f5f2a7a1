package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/manager"
	"github.com/hpungsan/charsheet/internal/store"
	"github.com/hpungsan/charsheet/internal/transfer"
	"github.com/hpungsan/charsheet/internal/upload"
	"github.com/hpungsan/charsheet/internal/web"
)

// appEnv is what every command runs against.
type appEnv struct {
	cfg     *config.Config
	baseDir string
	records *store.Records
	log     *logger.Logger
	in      io.Reader
	out     io.Writer
}

// newCLIApp creates the CLI application with all commands. env is nil for help/version.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "charsheet",
		Usage:   "Character sheet editor",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(env),
			showCmd(env),
			saveCmd(env),
			deleteCmd(env),
			imageCmd(env),
			exportCmd(env),
			importCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newManager loads the collection for one command. The CLI has no surface to
// render to, so a StateSurface collects the view for output. A nil decoder
// reads images as data URLs.
func (e *appEnv) newManager(ctx context.Context, confirmer manager.Confirmer, decoder upload.Decoder) (*manager.Manager, *manager.StateSurface, error) {
	if decoder == nil {
		decoder = upload.DataURLDecoder{MaxBytes: e.cfg.MaxImageBytes}
	}
	view := manager.NewStateSurface()
	mgr, err := manager.New(ctx, e.records, manager.Options{
		Surface:   view,
		Confirmer: confirmer,
		Decoder:   decoder,
		Logger:    e.log,
	})
	return mgr, view, err
}

// recordingDecoder keeps the last decode error. Read err only after Manager.Wait.
type recordingDecoder struct {
	upload.Decoder
	err error
}

func (d *recordingDecoder) Decode(ctx context.Context, f upload.File) (string, error) {
	payload, err := d.Decoder.Decode(ctx, f)
	d.err = err
	return payload, err
}

// selectExisting makes id current, failing if no character has it.
func selectExisting(ctx context.Context, mgr *manager.Manager, id string) error {
	mgr.Select(ctx, id)
	if cur, ok := mgr.Current(); !ok || cur.ID != id {
		return errors.NewNotFound(id)
	}
	return nil
}

// listItem is one row of list output.
type listItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored characters",
		Action: func(c *cli.Context) error {
			chars, err := env.records.LoadAll(c.Context)
			if err != nil {
				return outputError(err)
			}
			items := make([]listItem, 0, len(chars))
			for _, ch := range chars {
				items = append(items, listItem{ID: ch.ID, Name: ch.FullName()})
			}
			return env.outputJSON(items)
		},
	}
}

// showOutput is the result of show.
type showOutput struct {
	Character character.Character `json:"character"`
	Display   manager.Display     `json:"display"`
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a character sheet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			mgr, view, err := env.newManager(c.Context, nil, nil)
			if err != nil {
				return outputError(err)
			}
			if err := selectExisting(c.Context, mgr, c.Args().First()); err != nil {
				return outputError(err)
			}
			cur, _ := mgr.Current()
			return env.outputJSON(showOutput{Character: cur, Display: view.Snapshot().Display})
		},
	}
}

// saveCmd creates the save command.
func saveCmd(env *appEnv) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "Overwrite this character instead of creating one"},
		&cli.StringFlag{Name: "first", Aliases: []string{"f"}, Usage: "First name", Required: true},
		&cli.StringFlag{Name: "last", Aliases: []string{"l"}, Usage: "Last name", Required: true},
		&cli.StringFlag{Name: "age", Usage: "Age"},
		&cli.StringFlag{Name: "height", Usage: "Height"},
		&cli.StringFlag{Name: "weight", Usage: "Weight"},
	}
	for _, a := range character.Abilities {
		flags = append(flags, &cli.StringFlag{Name: string(a), Usage: strings.ToUpper(string(a)) + " score"})
	}

	return &cli.Command{
		Name:  "save",
		Usage: "Create a character, or overwrite one with --id (unset flags clear the field; the picture is kept)",
		Flags: flags,
		Action: func(c *cli.Context) error {
			mgr, _, err := env.newManager(c.Context, nil, nil)
			if err != nil {
				return outputError(err)
			}
			if id := c.String("id"); id != "" {
				if err := selectExisting(c.Context, mgr, id); err != nil {
					return outputError(err)
				}
			}

			form := manager.FormFromLookup(func(name string) string {
				switch name {
				case manager.FieldFirstName:
					return c.String("first")
				case manager.FieldLastName:
					return c.String("last")
				}
				return c.String(name)
			})
			saved, err := mgr.Submit(c.Context, form)
			if err != nil {
				return outputError(err)
			}
			return env.outputJSON(saved)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a character (asks for confirmation unless --yes)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}

			var confirmer manager.Confirmer = promptConfirmer{in: bufio.NewReader(env.in), out: os.Stderr}
			if c.Bool("yes") {
				confirmer = manager.ConfirmFunc(func(context.Context, string) bool { return true })
			}
			mgr, _, err := env.newManager(c.Context, confirmer, nil)
			if err != nil {
				return outputError(err)
			}
			id := c.Args().First()
			if err := selectExisting(c.Context, mgr, id); err != nil {
				return outputError(err)
			}

			deleted, err := mgr.Delete(c.Context)
			if err != nil {
				return outputError(err)
			}
			return env.outputJSON(map[string]any{"id": id, "deleted": deleted})
		},
	}
}

// imageCmd creates the image command.
func imageCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "image",
		Usage:     "Attach a picture to a character (a new unnamed one without --id is not saved)",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Character to attach the picture to"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			path := c.Args().First()
			info, err := os.Stat(path)
			if err != nil {
				if os.IsNotExist(err) {
					return outputError(errors.NewFileNotFound(path))
				}
				return outputError(errors.NewInternal(err))
			}
			if limit := env.cfg.MaxImageBytes; limit > 0 && info.Size() > limit {
				return outputError(errors.NewImageTooLarge(limit, info.Size()))
			}

			decoder := &recordingDecoder{Decoder: upload.DataURLDecoder{MaxBytes: env.cfg.MaxImageBytes}}
			mgr, _, err := env.newManager(c.Context, nil, decoder)
			if err != nil {
				return outputError(err)
			}
			if id := c.String("id"); id != "" {
				if err := selectExisting(c.Context, mgr, id); err != nil {
					return outputError(err)
				}
			}

			mgr.UploadImage(c.Context, upload.PathFile(path))
			mgr.Wait()

			if decoder.err != nil {
				return outputError(decoder.err)
			}
			cur, ok := mgr.Current()
			if !ok || cur.Image == "" {
				return outputError(errors.NewInvalidRequest("image could not be read"))
			}
			return env.outputJSON(map[string]any{"id": cur.ID, "persisted": cur.HasName(), "bytes": info.Size()})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export characters to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: exports directory)"},
		},
		Action: func(c *cli.Context) error {
			output, err := transfer.Export(c.Context, env.records, env.cfg, env.baseDir, transfer.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return env.outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import characters from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			output, err := transfer.Import(c.Context, env.records, env.cfg, env.baseDir, transfer.ImportInput{
				Path: c.Args().First(),
				Mode: transfer.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return env.outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web editor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("bind") {
				env.cfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				env.cfg.Port = c.Int("port")
			}

			view := manager.NewStateSurface()
			mgr, err := manager.New(c.Context, env.records, manager.Options{
				Surface:   view,
				Confirmer: manager.ContextConfirmer{},
				Decoder:   upload.DataURLDecoder{MaxBytes: env.cfg.MaxImageBytes},
				Logger:    env.log,
			})
			if err != nil {
				return outputError(err)
			}
			return web.Run(web.NewServer(mgr, view, env.cfg, env.log, Version), env.log)
		},
	}
}

// promptConfirmer asks on the terminal and reads a y/n answer.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return false
	}
	return isYes(line)
}

// isYes reports whether answer is an affirmative reply.
func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Helper functions

// outputJSON marshals result as indented JSON.
func (e *appEnv) outputJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	_, err = fmt.Fprintln(e.out, string(b))
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SheetError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
