package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nwallace/reno/internal/reno"
	"github.com/nwallace/reno/internal/reno/lint"
	"github.com/nwallace/reno/internal/reno/notewriter"
	"github.com/nwallace/reno/internal/reno/report"
)

// configureLogging builds the application's root logger for a requested
// verbosity: 'error' | 'warn' | 'info' | 'debug'.
func configureLogging(ls string) (*slog.Logger, error) {
	if ls == "" {
		ls = "error"
	}
	var l slog.Level
	switch ls {
	case "error":
		l = slog.LevelError
	case "warn":
		l = slog.LevelWarn
	case "info":
		l = slog.LevelInfo
	case "debug":
		l = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unrecognized log level %s", ls)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

// repoPath resolves the repository root a command operates against: the
// current working directory, always. Non-goal: discovering a containing
// repository from a nested subdirectory.
func repoPath() (string, error) {
	return os.Getwd()
}

func newScanner(c *cli.Context) (*reno.Scanner, error) {
	logger, ok := c.Context.Value(ctxLogger).(*slog.Logger)
	if !ok {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	root, err := repoPath()
	if err != nil {
		return nil, err
	}
	return reno.New(&reno.Opts{RepoPath: root, Logger: logger})
}

type ctxKey int

const ctxLogger ctxKey = iota

func contextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger, l)
}

func main() {
	app := &cli.App{
		Name:  "reno",
		Usage: "attribute release notes to the versions they belong to",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logging verbosity level",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := configureLogging(c.String("log-level"))
			if err != nil {
				return err
			}
			c.Context = contextWithLogger(c.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list every version a scan would report, newest first",
				Action: func(c *cli.Context) error {
					s, err := newScanner(c)
					if err != nil {
						return err
					}
					defer s.Close()
					result, err := s.Scan()
					if err != nil {
						return err
					}
					for _, bucket := range result {
						fmt.Fprintf(c.App.Writer, "%s (%d notes)\n", bucket.Version, len(bucket.Notes))
					}
					return nil
				},
			},
			{
				Name:  "report",
				Usage: "render the reStructuredText release notes document",
				Action: func(c *cli.Context) error {
					s, err := newScanner(c)
					if err != nil {
						return err
					}
					defer s.Close()
					result, err := s.Scan()
					if err != nil {
						return err
					}

					root, err := repoPath()
					if err != nil {
						return err
					}
					cfg, err := reno.LoadConfig(root, nil)
					if err != nil {
						return err
					}
					repo, err := reno.OpenRepository(root)
					if err != nil {
						return err
					}
					defer repo.Close()
					loader := reno.NewNoteLoader(repo, cfg)

					contents := report.Contents{}
					for _, bucket := range result {
						for _, ref := range bucket.Notes {
							note, _, err := loader.Load(ref)
							if err != nil {
								return err
							}
							contents[reno.NoteKey{Path: ref.Path, CommitID: ref.CommitID}] = note
						}
					}

					fmt.Fprint(c.App.Writer, report.Render(result, contents, cfg))
					return nil
				},
			},
			{
				Name:      "new",
				Usage:     "create a new, blank release note",
				ArgsUsage: "[slug]",
				Action: func(c *cli.Context) error {
					slug := c.Args().Get(0)
					if slug == "" {
						return fmt.Errorf("a slug argument is required")
					}
					root, err := repoPath()
					if err != nil {
						return err
					}
					cfg, err := reno.LoadConfig(root, nil)
					if err != nil {
						return err
					}
					path, err := notewriter.New(root, cfg).New(slug)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s\n", path)
					return nil
				},
			},
			{
				Name:  "lint",
				Usage: "report release notes with schema problems",
				Action: func(c *cli.Context) error {
					s, err := newScanner(c)
					if err != nil {
						return err
					}
					defer s.Close()
					result, err := s.Scan()
					if err != nil {
						return err
					}

					root, err := repoPath()
					if err != nil {
						return err
					}
					cfg, err := reno.LoadConfig(root, nil)
					if err != nil {
						return err
					}
					repo, err := reno.OpenRepository(root)
					if err != nil {
						return err
					}
					defer repo.Close()
					loader := reno.NewNoteLoader(repo, cfg)

					findings, err := lint.Run(loader, result)
					if err != nil {
						return err
					}
					for _, f := range findings {
						fmt.Fprintf(c.App.Writer, "%s (%s): %s\n", f.Path, f.Commit, f.Message)
					}
					if len(findings) > 0 {
						os.Exit(1)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
