package main

import (
	"log/slog"
	"os"

	"delrio-stay/internal/app"
	"delrio-stay/internal/logger"
)

func main() {
	// Colored output until the configuration picks the real format.
	slog.SetDefault(logger.New(os.Stdout, "pretty", slog.LevelInfo))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
