package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/qrlogo/qrlogo/cmd/app"
	"github.com/qrlogo/qrlogo/internal/adapters/config"
	"github.com/qrlogo/qrlogo/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Get(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	err = logger.Init(logger.Config{
		Debug:     cfg.Debug,
		LogToFile: cfg.LogToFile,
		LogsDir:   cfg.LogsDir,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	a, err := app.New(cfg, os.Stdout)
	if err != nil {
		logger.Log.Error(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := 0
	if err = a.Run(ctx); err != nil {
		logger.Log.Errorf("Failed to %s: %v", cfg.Command, err)
		code = 1
	}
	if err = a.Close(); err != nil {
		logger.Log.Errorf("Failed to save logo history: %v", err)
		code = 1
	}
	return code
}
