package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/floccus/internal"
	"github.com/starford/floccus/internal/bookmarks"
	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/mcpserver"
	"github.com/starford/floccus/internal/xbel"
	pkgconfig "github.com/starford/floccus/pkg/config"
)

const configEnv = "FLOCCUS_CONFIG"

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "floccus",
		Usage:   "Manage a Floccus XBEL bookmark file kept in a git repository",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<user config dir>/floccus/config.yaml",
				Sources:     cli.EnvVars(configEnv),
			},
			&cli.StringFlag{
				Name:    "repository",
				Aliases: []string{"r"},
				Usage:   "Working copy directory (overrides repository.path and repository.name)",
			},
			&cli.StringFlag{
				Name:    "git",
				Aliases: []string{"g"},
				Usage:   "Git repository url, e.g. https://github.com/you/bookmarks.git",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Working copy name inside the data directory",
			},
		},
		Commands: []*cli.Command{
			initCommand(out),
			createCommand(out),
			printCommand(out),
			addCommand(out),
			rmCommand(out),
			findCommand(out),
			importCommand(out),
			serveCommand(),
			mcpCommand(),
		},
	}
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "floccus", "config.yaml"), nil
}

func defaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "floccus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate data dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "floccus"), nil
}

// loadConfig builds the configuration from defaults, the config file and the
// global flags, in that order of precedence. A missing default config file
// is not an error; a missing explicit one is.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	cfg := internal.NewDefaultConfig(dataDir)

	path := cmd.String("config")
	if path == "" {
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
		err = pkgconfig.LoadOptional(path, cfg)
	} else {
		err = pkgconfig.Load(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := cmd.String("repository"); dir != "" {
		cfg.Repository.Path, cfg.Repository.Name = filepath.Dir(dir), filepath.Base(dir)
	}
	if name := cmd.String("name"); name != "" {
		cfg.Repository.Name = name
	}
	if url := cmd.String("git"); url != "" {
		cfg.Repository.URL = url
	}
	return cfg, cfg.Validate()
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// open loads the configuration and the working copy.
func open(ctx context.Context, cmd *cli.Command) (*internal.Config, *internal.Repository, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	repo, err := internal.OpenRepository(ctx, cfg.Repository, newLogger(cfg.App.LogLevel))
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}

// push resolves --disable-push against the configuration: the flag wins
// when given.
func push(cmd *cli.Command, cfg *internal.Config) bool {
	if cmd.IsSet("disable-push") {
		return !cmd.Bool("disable-push")
	}
	return !cfg.Repository.DisablePush
}

func disablePushFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:  "disable-push",
		Usage: usage + " (default from repository.disable_push)",
	}
}

func initCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a config file for a git repository url",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			url := cmd.String("git")
			if url == "" {
				return errors.New("please provide a git repository url with --git")
			}
			path := cmd.String("config")
			if path == "" {
				var err error
				if path, err = defaultConfigPath(); err != nil {
					return err
				}
			}
			dataDir, err := defaultDataDir()
			if err != nil {
				return err
			}

			cfg := internal.NewDefaultConfig(dataDir)
			cfg.Repository.URL = url
			if name := cmd.String("name"); name != "" {
				cfg.Repository.Name = name
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := pkgconfig.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Config written to %s\n", path)
			return nil
		},
	}
}

func createCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an empty bookmark file in a repository that has none",
		Flags: []cli.Flag{
			disablePushFlag("Create the file locally but do not push it"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			if err := repo.Service.Create(ctx, push(cmd, cfg)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", repo.Service.File())
			return nil
		},
	}
}

func printCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "Print the bookmark tree",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			doc, err := repo.Service.Load(ctx)
			if err != nil {
				return err
			}
			return bookmarks.RenderTree(out, doc)
		},
	}
}

func addCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a bookmark",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bookmark", Aliases: []string{"b"}, Usage: "Url to add", Required: true},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Url title or description", Required: true},
			&cli.StringFlag{Name: "under", Aliases: []string{"u"}, Usage: "Address to add the bookmark under", Value: "root"},
			disablePushFlag("Add the bookmark locally but do not push it"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			b, err := repo.Service.Add(ctx, bookmarks.AddRequest{
				URL:   cmd.String("bookmark"),
				Title: cmd.String("title"),
				Under: xbel.ParseAddress(cmd.String("under")),
				Push:  push(cmd, cfg),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added %s\n", bookmarks.Describe(b))
			return nil
		},
	}
}

func rmCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "rm",
		Usage: "Remove a bookmark or a folder with its contents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "Address of the item to remove", Required: true},
			&cli.BoolFlag{Name: "dry-run", Usage: "Do not remove, just print"},
			disablePushFlag("Remove the item locally but do not push it"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			rm, err := repo.Service.Remove(ctx, bookmarks.RemoveRequest{
				Item:   xbel.ParseAddress(cmd.String("item")),
				DryRun: cmd.Bool("dry-run"),
				Push:   push(cmd, cfg),
			})
			if err != nil {
				return err
			}
			prefix := "Removed"
			if rm.DryRun {
				prefix = "[Dry run] removing"
			}
			fmt.Fprintf(out, "%s %s", prefix, bookmarks.Describe(rm.Item))
			if rm.Descendants > 0 {
				fmt.Fprintf(out, " (%d %s)", rm.Descendants, pluralize("descendant", rm.Descendants))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func findCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find folders and bookmarks by title or url substring",
		ArgsUsage: "TEXT",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "title", Aliases: []string{"t"}, Usage: "Only search in titles"},
			&cli.BoolFlag{Name: "url", Aliases: []string{"u"}, Usage: "Only search in urls"},
			&cli.BoolFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Only find folders"},
			&cli.BoolFlag{Name: "bookmark", Aliases: []string{"b"}, Usage: "Only find bookmarks"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := cmd.Args().First()
			if text == "" {
				return errors.New("find: missing TEXT argument")
			}
			q := xbel.Query{Text: text}
			noun := "folder or bookmark"
			switch {
			case cmd.Bool("folder"):
				q.Kind, noun = xbel.FindFolders, "folder"
			case cmd.Bool("bookmark"):
				q.Kind, noun = xbel.FindBookmarks, "bookmark"
			}
			switch {
			case cmd.Bool("title"):
				q.Field = xbel.FieldTitle
			case cmd.Bool("url"):
				q.Field = xbel.FieldURL
			}

			_, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			items, err := repo.Service.Find(ctx, q)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(out, "Found 0 %s\n", noun)
				return nil
			}
			fmt.Fprintf(out, "Found %d %s:\n", len(items), pluralize(noun, len(items)))
			for i, item := range items {
				fmt.Fprintf(out, "%d- %s\n", i, bookmarks.Describe(item))
			}
			return nil
		},
	}
}

func importCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a Netscape bookmark file exported by a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Bookmark HTML file", Required: true},
			&cli.StringFlag{Name: "under", Aliases: []string{"u"}, Usage: "Address to import under", Value: "root"},
			disablePushFlag("Import locally but do not push"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(cmd.String("file"))
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			res, err := repo.Service.Import(ctx, bookmarks.ImportRequest{
				Source: f,
				Under:  xbel.ParseAddress(cmd.String("under")),
				Push:   push(cmd, cfg),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d %s (ids %s to %s)\n",
				res.Items, pluralize("item", res.Items), res.FirstID, res.LastID)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the REST API with live change events",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, repo, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			logger := slog.Default()

			db, err := internal.OpenIndex(cfg.SQLite)
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := index.Sync(db, repo.Store, repo.Service.File(), logger); err != nil {
				logger.Warn("initial sync failed", slog.String("error", err.Error()))
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := index.Watch(ctx, db, repo.Store, repo.Store.Root(), repo.Service.File(), logger, nil); err != nil {
					logger.Warn("watcher stopped", slog.String("error", err.Error()))
				}
			}()

			return mcpserver.New(repo.Service, db, version).ServeStdio()
		},
	}
}

func pluralize(s string, n int) string {
	if n <= 1 {
		return s
	}
	if strings.HasSuffix(s, " or bookmark") {
		return "folders or bookmarks"
	}
	return s + "s"
}
