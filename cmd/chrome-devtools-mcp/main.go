// chrome-devtools-mcp is an MCP server exposing Chrome automation tools.
// It speaks MCP over stdio by default, or over a multi-session HTTP endpoint
// when a port is configured.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
	"github.com/AgentWings/chrome-devtools-mcp/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return 1
	}

	log, err := newLogger(cfg)
	if err != nil {
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPEnabled {
		err = transport.ServeHTTP(ctx, cfg, log)
	} else {
		err = transport.ServeStdio(ctx, cfg, log)
	}
	if err != nil {
		log.Error("server terminated", zap.Error(err))
		return 1
	}
	return 0
}

// newLogger builds the operator-facing logger. Output goes to stderr in both
// modes; stdout belongs to the stdio transport.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
