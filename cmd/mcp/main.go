package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/multitask-helper/internal/adapters/mcp"
	"github.com/kirillkom/multitask-helper/internal/bootstrap"
	"github.com/kirillkom/multitask-helper/internal/config"
	"github.com/kirillkom/multitask-helper/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the MCP protocol.
	slog.SetDefault(logging.New(os.Stderr, "multitask-helper-mcp", cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, bootstrap.Options{})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.ReloadTargets != nil {
		go func() {
			if err := app.ReloadTargets(ctx); err != nil {
				slog.Warn("targets_reload_stopped", "error", err)
			}
		}()
	}

	s := mcpadapter.NewServer(app.Watcher, version)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
