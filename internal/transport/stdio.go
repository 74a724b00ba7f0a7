// Package transport exposes the server over its two front-ends: a single
// long-lived stdio stream, and a multi-session HTTP endpoint with an explicit
// session registry.
package transport

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
	"github.com/AgentWings/chrome-devtools-mcp/internal/server"
)

// disclaimer is shown to the operator once per connection. Exposing browser
// control hands connected clients everything the browser can reach.
const disclaimer = "chrome-devtools-mcp gives MCP clients control over the connected browser. " +
	"Anything the browser can reach — open sessions, cookies, local network — is reachable by those clients. " +
	"Only connect clients you trust."

// ServeStdio binds exactly one server instance to the process's stdio stream
// and serves until the stream closes. The stream closing is terminal for the
// serving loop, not for the process.
func ServeStdio(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	inst := server.New(cfg, log)
	defer inst.Close()

	log.Warn(disclaimer)

	session, err := inst.MCP().Connect(ctx, &mcp.StdioTransport{}, nil)
	if err != nil {
		return fmt.Errorf("connect stdio transport: %w", err)
	}

	log.Info("serving MCP over stdio", zap.Int("tools", len(inst.Tools())))
	return session.Wait()
}
