package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-room/internal"
	"github.com/rocketscienceinc/tictactoe-room/internal/config"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "tictactoe-room",
		Usage:   "serve a shared tic-tac-toe room over websockets",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config.yml",
				Usage:   "path to the YAML config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "app run failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	conf, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	logger := initLogger(conf)
	logger.Info("starting", "version", version, "room", conf.RoomID)

	return app.RunApp(ctx, logger, conf)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
