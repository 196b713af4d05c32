package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vaultjoin/internal"
	pkgconfig "github.com/starford/vaultjoin/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	err := pkgconfig.LoadOptional(cmd.String("config"), cfg, func(c *internal.Config) {
		if v := cmd.String("vault"); v != "" {
			c.Vault.Path = v
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func index(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.PrintIndex(ctx, os.Stdout, cmd.String("strategy"), internal.WithConfig(cfg))
}

func parse(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("parse: note path is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.PrintNote(os.Stdout, path, cfg)
}

func join(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ApplyManifest(ctx, os.Stdout, cmd.String("strategy"), cmd.String("manifest"), internal.WithConfig(cfg))
}

func strategyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "strategy",
		Aliases:  []string{"s"},
		Usage:    "Name of a configured join strategy",
		Required: true,
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "vaultjoin",
		Usage:  "Join domain objects to frontmatter notes in a vault",
		Action: serve,
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
				Name:    "vault",
				Usage:   "Vault directory (overrides vault.path)",
				Sources: cli.EnvVars("VAULT_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdio",
				Action: serveMCP,
			},
			{
				Name:   "index",
				Usage:  "Print key and path of every note a strategy finds",
				Flags:  []cli.Flag{strategyFlag()},
				Action: index,
			},
			{
				Name:      "parse",
				Usage:     "Print a note's metadata as JSON followed by its body",
				ArgsUsage: "PATH",
				Action:    parse,
			},
			{
				Name:  "join",
				Usage: "Create or update the notes listed in a manifest",
				Flags: []cli.Flag{
					strategyFlag(),
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "YAML or JSON manifest of joins",
						Required: true,
					},
				},
				Action: join,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
