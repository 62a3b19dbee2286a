package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:]); err != nil {
		slog.Error("Server stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// Load config in order: defaults, .env, environment, flags. Then serve until ctx is done
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) error {
	config := NewConfig()

	if err := config.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("can't load .env file. Err: %w", err)
	}
	if err := config.LoadEnv(getenv); err != nil {
		return fmt.Errorf("can't load environment. Err: %w", err)
	}
	if err := config.ParseFlags(args); err != nil {
		return fmt.Errorf("can't parse flags. Err: %w", err)
	}

	app, err := NewServerApp(ctx, config)
	if err != nil {
		return fmt.Errorf("can't initialize app. Err: %w", err)
	}

	return app.Run(ctx)
}
