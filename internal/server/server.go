// Package server binds the tool catalogue, the dispatch guard, and the
// context resolver into one MCP server instance. One instance serves one
// logical client connection; instances never share state.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
	"github.com/AgentWings/chrome-devtools-mcp/internal/tools"
)

const (
	// Name identifies the server to MCP clients.
	Name = "chrome-devtools-mcp"
	// Version is the advertised server version.
	Version = "0.1.0"
)

// ContextResolver produces the shared automation context for an instance.
// browser.Resolver is the production implementation; tests substitute fakes.
type ContextResolver interface {
	Resolve() (*browser.Context, error)
	Close()
}

// Instance is the per-connection server state: its registered tool subset,
// its dispatch guard, and its lazily resolved automation context.
type Instance struct {
	cfg      *config.Config
	log      *zap.Logger
	mcp      *mcp.Server
	resolver ContextResolver

	// guard serializes tool invocations. Weighted semaphore acquisition is
	// FIFO under contention, which gives arrival-order execution.
	guard *semaphore.Weighted

	tools []*tools.Tool
}

// New assembles an instance from the static catalogue and the configured
// category toggles.
func New(cfg *config.Config, log *zap.Logger) *Instance {
	return NewWithResolver(cfg, log, browser.NewResolver(cfg, log))
}

// NewWithResolver is New with an explicit context resolver.
func NewWithResolver(cfg *config.Config, log *zap.Logger, resolver ContextResolver) *Instance {
	s := &Instance{
		cfg:      cfg,
		log:      log,
		resolver: resolver,
		guard:    semaphore.NewWeighted(1),
		tools:    tools.Assemble(tools.Catalogue(), cfg),
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	for _, t := range s.tools {
		srv.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
		}, s.invoke(t))
	}
	s.mcp = srv

	return s
}

// MCP returns the protocol server to connect to a transport.
func (s *Instance) MCP() *mcp.Server { return s.mcp }

// Tools returns the registered tool subset in registration order.
func (s *Instance) Tools() []*tools.Tool { return s.tools }

// invoke builds the protocol-facing handler for one tool. The returned
// handler is the invocation pipeline: acquire the guard, resolve the
// automation context, refresh the devtools pre-check, run the tool, finalize
// the response. The guard is released on every exit path.
func (s *Instance) invoke(t *tools.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.guard.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.guard.Release(1)

		bctx, err := s.resolver.Resolve()
		if err != nil {
			s.log.Error("context resolution failed", zap.String("tool", t.Name), zap.Error(err))
			return nil, err
		}
		bctx.RefreshDevToolsState()
		if err := bctx.SyncPages(); err != nil {
			// Stale page tracking is recoverable; the call proceeds against
			// the last known page set.
			s.log.Warn("page sync failed", zap.String("tool", t.Name), zap.Error(err))
		}

		args, err := parseArguments(req)
		if err != nil {
			return nil, err
		}

		resp := tools.NewResponse()
		if err := t.Handler(ctx, tools.Request{Params: args}, resp, bctx); err != nil {
			// A handler fault is a call-level fault: log it and re-raise to
			// the transport rather than soft-landing it in the result.
			s.log.Error("tool failed", zap.String("tool", t.Name), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}

		result, err := resp.Finalize(bctx)
		if err != nil {
			// Finalization faults are deliberately softer than handler
			// faults: the call succeeds at the protocol level and carries
			// the failure as an error-flagged result.
			s.log.Warn("response finalization failed", zap.String("tool", t.Name), zap.Error(err))
			return tools.ErrorResult(err.Error()), nil
		}
		return result, nil
	}
}

// Close releases the instance's automation context. In-flight invocations
// are not interrupted; callers close only after the owning transport has
// signalled closure.
func (s *Instance) Close() {
	s.resolver.Close()
}

func parseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("unmarshal arguments: %w", err)
	}
	return args, nil
}
