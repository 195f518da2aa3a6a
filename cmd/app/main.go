package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/adyingdeath/blog/internal"
	pkgconfig "github.com/adyingdeath/blog/pkg/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOrDefault(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}
	if dir := cmd.String("content"); dir != "" {
		cfg.Content.SetDir(dir)
	}
	return cfg, nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if out := cmd.String("out"); out != "" {
		cfg.Site.OutputDir = out
	}
	if err := internal.Build(ctx, internal.WithConfig(cfg), internal.WithStrict(cmd.Bool("strict"))); err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(Version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(Version)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	cmd := &cli.Command{
		Name:    "blog",
		Usage:   "Compile a Markdown/MDX content directory into a blog and serve it",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "content",
				Usage:   "Content directory (overrides content.dir; a projects file inside the old directory follows it)",
				Sources: cli.EnvVars("BLOG_CONTENT_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Compile every document and write the static output",
				Action: build,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory (overrides site.output_dir)",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Fail when any document fails to compile",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the blog API, rebuilding on content changes",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only blog tools over MCP stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
