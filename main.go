package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/teichholz/go-tubes/commands"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp(log, level)
	if err := app.Command().ExecuteContext(ctx); err != nil {
		log.Error("tubes failed", "err", err)
		stop()
		os.Exit(1)
	}
}
