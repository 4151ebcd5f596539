package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/filter"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/noteservice"
	"github.com/starford/ansuz/internal/storage"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Metadata editor for Markdown vaults: frontmatter and inline key :: value fields",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			addCommand(),
			removeCommand(),
			moveCommand(),
			dedupeCommand(),
			orderCommand(),
			updateCommand(),
			appendCommand(),
			subCommand(),
			queryCommand(),
			keysCommand(),
			searchCommand(),
			syncCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the --config flag, falling
// back to the built-in defaults when the file does not exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if err := pkgconfig.Load(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if vErr := cfg.Validate(); vErr != nil {
				return nil, vErr
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// env bundles everything a vault command needs.
type env struct {
	cfg   *internal.Config
	store storage.Provider
	db    *index.DB
	svc   *noteservice.Service
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

// openEnv builds the service stack for a CLI invocation. Logs go to
// stderr so stdout stays parseable.
func openEnv(cmd *cli.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	composeCfg, err := cfg.Compose.NoteComposeConfig()
	if err != nil {
		db.Close()
		return nil, err
	}
	svc := noteservice.NewService(store, db, logger, composeCfg)
	return &env{cfg: cfg, store: store, db: db, svc: svc}, nil
}

// selectionFlags are shared by every command that edits notes.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
		&cli.StringSliceFlag{Name: "path", Usage: "Exact note path(s) to edit; repeatable"},
		&cli.StringFlag{Name: "name-prefix", Usage: "Only notes whose name starts with this prefix"},
		&cli.StringFlag{Name: "name-suffix", Usage: "Only notes whose name ends with this suffix"},
		&cli.StringFlag{Name: "name-pattern", Usage: "Only notes whose name matches this regular expression"},
		&cli.StringSliceFlag{Name: "where", Usage: `Metadata clause ("key", "key=v1,v2", "kind:key=v"); repeatable`},
		&cli.BoolFlag{Name: "dry-run", Usage: "Report what would change without writing"},
		&cli.StringFlag{Name: "position", Usage: "Where the grouped inline block goes: top or bottom"},
		&cli.StringFlag{Name: "template", Usage: "Inline block template: standard or callout"},
		&cli.BoolFlag{Name: "inplace", Usage: "Rewrite inline fields where they occur instead of grouping"},
	}
}

func buildFilter(cmd *cli.Command) (*filter.Filter, error) {
	f := &filter.Filter{
		Paths:   cmd.StringSlice("path"),
		Prefix:  cmd.String("name-prefix"),
		Suffix:  cmd.String("name-suffix"),
		Pattern: cmd.String("name-pattern"),
	}
	for _, w := range cmd.StringSlice("where") {
		c, err := filter.ParseMetaClause(w)
		if err != nil {
			return nil, err
		}
		f.Meta = append(f.Meta, c)
	}
	return f, nil
}

// composeOverride builds an engine compose config when any of the
// compose flags are set; nil means use the config file defaults.
func composeOverride(cmd *cli.Command, cfg *internal.Config) (*note.ComposeConfig, error) {
	pos := cmd.String("position")
	tpl := cmd.String("template")
	inplace := cmd.Bool("inplace")
	if pos == "" && tpl == "" && !inplace {
		return nil, nil
	}
	base := cfg.Compose
	if pos != "" {
		base.Position = pos
	}
	if tpl != "" {
		base.Template = tpl
	}
	base.Inplace = base.Inplace || inplace
	nc, err := (&base).NoteComposeConfig()
	if err != nil {
		return nil, err
	}
	return &nc, nil
}

// runEdit executes ops against the selected notes and prints the report.
func runEdit(ctx context.Context, cmd *cli.Command, ops []noteservice.Op) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	f, err := buildFilter(cmd)
	if err != nil {
		return err
	}
	compose, err := composeOverride(cmd, e.cfg)
	if err != nil {
		return err
	}

	report, err := e.svc.Edit(ctx, f, ops, compose, cmd.Bool("dry-run"))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, report)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add metadata values to the selected notes",
		Flags: append(selectionFlags(),
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "Metadata key", Required: true},
			&cli.StringSliceFlag{Name: "value", Aliases: []string{"v"}, Usage: "Value to add; repeatable"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter, inline or all", Value: "all"},
			&cli.BoolFlag{Name: "overwrite", Usage: "Replace existing values instead of appending"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action:    "add",
				Key:       cmd.String("key"),
				Values:    cmd.StringSlice("value"),
				Kind:      cmd.String("kind"),
				Overwrite: cmd.Bool("overwrite"),
			}})
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Remove a metadata key, specific values, or all empty keys",
		Flags: append(selectionFlags(),
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "Metadata key"},
			&cli.StringSliceFlag{Name: "value", Aliases: []string{"v"}, Usage: "Value to remove; repeatable (omit to drop the key)"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter, inline or all", Value: "all"},
			&cli.BoolFlag{Name: "empty", Usage: "Remove every key that has no values"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("empty") {
				return runEdit(ctx, cmd, []noteservice.Op{{
					Action: "remove-empty",
					Kind:   cmd.String("kind"),
				}})
			}
			if cmd.String("key") == "" {
				return fmt.Errorf("either --key or --empty is required")
			}
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action: "remove",
				Key:    cmd.String("key"),
				Values: cmd.StringSlice("value"),
				Kind:   cmd.String("kind"),
			}})
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move keys between the frontmatter and inline stores",
		Flags: append(selectionFlags(),
			&cli.StringSliceFlag{Name: "key", Aliases: []string{"k"}, Usage: "Key to move; repeatable (omit for all keys)"},
			&cli.StringFlag{Name: "from", Usage: "Source store: frontmatter or inline", Required: true},
			&cli.StringFlag{Name: "to", Usage: "Destination store: frontmatter or inline", Required: true},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action: "move",
				Keys:   cmd.StringSlice("key"),
				From:   cmd.String("from"),
				To:     cmd.String("to"),
			}})
		},
	}
}

func dedupeCommand() *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Drop repeated values, keeping first occurrences",
		Flags: append(selectionFlags(),
			&cli.StringSliceFlag{Name: "key", Aliases: []string{"k"}, Usage: "Key to dedupe; repeatable (omit for all keys)"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter, inline or all", Value: "all"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action: "dedupe",
				Keys:   cmd.StringSlice("key"),
				Kind:   cmd.String("kind"),
			}})
		},
	}
}

func orderCommand() *cli.Command {
	return &cli.Command{
		Name:  "order",
		Usage: "Sort metadata keys and/or values",
		Flags: append(selectionFlags(),
			&cli.StringSliceFlag{Name: "key", Aliases: []string{"k"}, Usage: "Key whose values to sort; repeatable (omit for all keys)"},
			&cli.StringFlag{Name: "keys", Usage: "Key order: asc or desc"},
			&cli.StringFlag{Name: "values", Usage: "Value order: asc or desc"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter, inline or all", Value: "all"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("keys") == "" && cmd.String("values") == "" {
				return fmt.Errorf("at least one of --keys or --values is required")
			}
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action:   "order",
				Keys:     cmd.StringSlice("key"),
				KeyOrder: cmd.String("keys"),
				Order:    cmd.String("values"),
				Kind:     cmd.String("kind"),
			}})
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Recompose the selected notes into canonical form without changing metadata",
		Flags: selectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, nil)
		},
	}
}

func appendCommand() *cli.Command {
	return &cli.Command{
		Name:  "append",
		Usage: "Append text to the body of the selected notes",
		Flags: append(selectionFlags(),
			&cli.StringFlag{Name: "text", Usage: "Text to append", Required: true},
			&cli.BoolFlag{Name: "allow-repeat", Usage: "Append even when the text already occurs"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action:      "append",
				Text:        cmd.String("text"),
				AllowRepeat: cmd.Bool("allow-repeat"),
			}})
		},
	}
}

func subCommand() *cli.Command {
	return &cli.Command{
		Name:  "sub",
		Usage: "Substitute text in the body of the selected notes",
		Flags: append(selectionFlags(),
			&cli.StringFlag{Name: "pattern", Usage: "Text or regular expression to replace", Required: true},
			&cli.StringFlag{Name: "replace", Usage: "Replacement text"},
			&cli.BoolFlag{Name: "regex", Usage: "Treat the pattern as a regular expression"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runEdit(ctx, cmd, []noteservice.Op{{
				Action:  "sub",
				Pattern: cmd.String("pattern"),
				Replace: cmd.String("replace"),
				Regex:   cmd.Bool("regex"),
			}})
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Find notes by metadata key and value (run sync first)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Usage: "Metadata key", Required: true},
			&cli.StringFlag{Name: "value", Aliases: []string{"v"}, Usage: "Required value"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter or inline"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			paths, err := e.svc.Query(ctx, index.FieldQuery{
				Key:   cmd.String("key"),
				Value: cmd.String("value"),
				Kind:  cmd.String("kind"),
			})
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func keysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "List every metadata key in the vault (run sync first)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
			&cli.StringFlag{Name: "kind", Usage: "Store: frontmatter or inline"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			keys, err := e.svc.ListKeys(ctx, cmd.String("kind"))
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, keys)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search over metadata keys and values (run sync first)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
			&cli.IntFlag{Name: "limit", Usage: "Max results", Value: 20},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q := cmd.Args().First()
			if q == "" {
				return fmt.Errorf("a query argument is required")
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			results, err := e.svc.Search(ctx, q, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, results)
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Bring the metadata index up to date with the vault on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return e.svc.Sync(ctx)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API with a file watcher and SSE updates",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio for LLM integration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Usage: "Vault directory (overrides config)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return mcpserver.New(e.svc, e.store).ServeStdio()
		},
	}
}
