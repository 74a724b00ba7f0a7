package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
)

// Resolver lazily produces the automation context for one server instance.
// The first Resolve connects or launches; later calls reuse the memoized
// context unless the underlying browser handle has changed identity, in
// which case the stale context is discarded and rebuilt. Failed attempts are
// never cached.
type Resolver struct {
	cfg *config.Config
	log *zap.Logger

	browser  *rod.Browser
	launcher *launcher.Launcher
	context  *Context
}

// NewResolver creates a resolver in the unresolved state.
func NewResolver(cfg *config.Config, log *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, log: log}
}

// Resolve returns the shared automation context, creating it on first use.
// Callers must hold the dispatch guard.
func (r *Resolver) Resolve() (*Context, error) {
	b, err := r.resolveBrowser()
	if err != nil {
		return nil, err
	}

	if r.context == nil || r.context.Browser() != b {
		if r.context != nil {
			r.log.Info("browser handle changed, rebuilding automation context")
		}
		c, err := newContext(b, r.launcher, r.cfg, r.log)
		if err != nil {
			return nil, err
		}
		r.context = c
	}

	return r.context, nil
}

// resolveBrowser returns the memoized browser handle, re-establishing it when
// the previous one no longer answers. Reconnection replaces the handle, which
// Resolve detects as an identity change.
func (r *Resolver) resolveBrowser() (*rod.Browser, error) {
	if r.browser != nil {
		if _, err := (proto.BrowserGetVersion{}).Call(r.browser); err == nil {
			return r.browser, nil
		}
		r.log.Warn("browser connection lost, reconnecting")
		r.browser = nil
		r.launcher = nil
	}

	if r.cfg.BrowserURL != "" {
		b, err := connect(r.cfg, r.log)
		if err != nil {
			return nil, err
		}
		r.browser = b
		return b, nil
	}

	b, l, err := launch(r.cfg, r.log)
	if err != nil {
		return nil, err
	}
	r.browser = b
	r.launcher = l
	return b, nil
}

// Close tears down the resolved context, if any. The resolver returns to the
// unresolved state and may be resolved again.
func (r *Resolver) Close() {
	if r.context != nil {
		r.context.Close()
		r.context = nil
	}
	r.browser = nil
	r.launcher = nil
}
