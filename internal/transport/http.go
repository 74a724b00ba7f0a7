package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
	"github.com/AgentWings/chrome-devtools-mcp/internal/server"
)

// SessionHeader carries the session identifier on protocol requests.
const SessionHeader = "Mcp-Session-Id"

// HTTP is the multi-session front-end. Each logical session gets its own
// server instance (and therefore its own automation context); the registry
// is the only state the sessions share.
type HTTP struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *Registry

	// newInstance builds the per-session server. Tests substitute this to
	// avoid touching a real browser.
	newInstance func() *server.Instance
}

// NewHTTP creates the multi-session front-end with an empty registry.
func NewHTTP(cfg *config.Config, log *zap.Logger) *HTTP {
	return &HTTP{
		cfg:      cfg,
		log:      log,
		registry: NewRegistry(),
		newInstance: func() *server.Instance {
			return server.New(cfg, log)
		},
	}
}

// Registry exposes the session registry, primarily for inspection in tests.
func (h *HTTP) Registry() *Registry { return h.registry }

// Router builds the route table: /mcp for protocol traffic, /health for
// liveness, everything else not found.
func (h *HTTP) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestLogger)
	r.Get("/health", h.handleHealth)
	r.HandleFunc("/mcp", h.handleMCP)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	// Routing is by path only; a wrong method on a known path is still
	// "not found" to clients.
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	return r
}

// handleMCP routes protocol traffic. A known session id forwards to that
// session's transport adapter; a session-less POST creates a new session;
// anything else is a client error. Unknown ids never create sessions.
func (h *HTTP) handleMCP(w http.ResponseWriter, r *http.Request) {
	if id := r.Header.Get(SessionHeader); id != "" {
		sess, err := h.registry.Lookup(id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		sess.Transport.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	h.createSession(w, r)
}

// createSession builds a fresh server instance and transport adapter, wires
// the registry lifecycle, and hands the initiating request to the adapter.
func (h *HTTP) createSession(w http.ResponseWriter, r *http.Request) {
	inst := h.newInstance()
	transport := &mcp.StreamableServerTransport{SessionID: uuid.NewString()}

	// The session outlives the initiating request, so it is connected
	// against the background context, not the request's.
	session, err := inst.MCP().Connect(context.Background(), transport, nil)
	if err != nil {
		h.log.Error("session creation failed", zap.Error(err))
		inst.Close()
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	sess := &Session{ID: transport.SessionID, Instance: inst, Transport: transport}
	if err := h.registry.Insert(sess); err != nil {
		h.log.Error("session registration failed", zap.String("session", sess.ID), zap.Error(err))
		_ = session.Close()
		inst.Close()
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	h.log.Info("session created", zap.String("session", sess.ID))

	// Transport closure is the teardown signal: drop the registry entry,
	// then release the instance and its automation context.
	go func() {
		_ = session.Wait()
		h.registry.Remove(sess.ID)
		inst.Close()
		h.log.Info("session closed", zap.String("session", sess.ID))
	}()

	transport.ServeHTTP(w, r)
}

// handleHealth reports liveness regardless of session state.
func (h *HTTP) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// requestLogger tags each request with an id and logs its outcome.
func (h *HTTP) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ulid.Make().String()
		next.ServeHTTP(w, r)
		h.log.Debug("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// ServeHTTP binds the TCP listener and serves until ctx is cancelled.
// Loopback-only outside production mode.
func ServeHTTP(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	h := NewHTTP(cfg, log)

	host := "127.0.0.1"
	if cfg.Production {
		host = "0.0.0.0"
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.HTTPPort))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	endpoint := fmt.Sprintf("http://%s", ln.Addr().String())
	log.Info("serving MCP over HTTP", zap.String("endpoint", endpoint))
	if !cfg.Production {
		log.Info("routes",
			zap.String("mcp", endpoint+"/mcp"),
			zap.String("health", endpoint+"/health"))
		log.Info("client configuration snippet",
			zap.String("config", fmt.Sprintf(`{"mcpServers":{"chrome-devtools":{"url":"%s/mcp"}}}`, endpoint)))
	}

	srv := &http.Server{Handler: h.Router()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
