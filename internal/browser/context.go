package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
)

// consoleLimit bounds the console ring so a chatty page cannot grow the
// context without bound.
const consoleLimit = 500

// ConsoleMessage is one captured console API call.
type ConsoleMessage struct {
	Type string
	Text string
}

// NetworkRequest is one observed network exchange. Status stays zero until
// the response arrives.
type NetworkRequest struct {
	URL      string
	Method   string
	Status   int
	MIMEType string
}

// Context is the automation context shared by every tool handler within one
// server instance. It is not safe for concurrent use; the dispatch guard
// serializes all handler access. The console and network logs are the one
// exception: they are fed by driver event goroutines and carry their own
// lock.
type Context struct {
	browser  *rod.Browser
	launcher *launcher.Launcher // nil when attached to an existing browser
	viewport *config.Viewport
	log      *zap.Logger

	pages    []*rod.Page
	selected int

	devtoolsOpen bool
	traceActive  bool

	mu      sync.Mutex
	console []ConsoleMessage
	network []*NetworkRequest
	byID    map[proto.NetworkRequestID]*NetworkRequest
}

// newContext wraps a connected browser handle. It guarantees at least one
// open page and starts event capture on every page it knows about.
func newContext(b *rod.Browser, l *launcher.Launcher, cfg *config.Config, log *zap.Logger) (*Context, error) {
	c := &Context{
		browser:  b,
		launcher: l,
		viewport: cfg.Viewport,
		log:      log,
		byID:     make(map[proto.NetworkRequestID]*NetworkRequest),
	}

	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	for _, p := range pages {
		c.adopt(p)
	}
	if len(c.pages) == 0 {
		if _, err := c.NewPage("about:blank"); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Browser returns the underlying browser handle. The resolver compares it
// against freshly resolved handles to detect external reconnection.
func (c *Context) Browser() *rod.Browser { return c.browser }

// Pages returns the tracked page set in stable order.
func (c *Context) Pages() []*rod.Page { return c.pages }

// SelectedPage returns the page tool handlers act on.
func (c *Context) SelectedPage() (*rod.Page, error) {
	if c.selected < 0 || c.selected >= len(c.pages) {
		return nil, fmt.Errorf("no page selected")
	}
	return c.pages[c.selected], nil
}

// SelectedIndex returns the index of the currently selected page.
func (c *Context) SelectedIndex() int { return c.selected }

// SelectPage makes the page at idx the target of subsequent tool calls.
func (c *Context) SelectPage(idx int) error {
	if idx < 0 || idx >= len(c.pages) {
		return fmt.Errorf("no page with index %d, %d pages open", idx, len(c.pages))
	}
	c.selected = idx
	return nil
}

// NewPage opens a page at url, adopts it, and selects it.
func (c *Context) NewPage(url string) (*rod.Page, error) {
	p, err := c.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	if c.viewport != nil {
		err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             c.viewport.Width,
			Height:            c.viewport.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("apply viewport: %w", err)
		}
	}
	c.adopt(p)
	c.selected = len(c.pages) - 1
	return p, nil
}

// ClosePage closes the page at idx. The last open page cannot be closed;
// handlers rely on a page always being selectable.
func (c *Context) ClosePage(idx int) error {
	if idx < 0 || idx >= len(c.pages) {
		return fmt.Errorf("no page with index %d, %d pages open", idx, len(c.pages))
	}
	if len(c.pages) == 1 {
		return fmt.Errorf("cannot close the last open page")
	}

	if err := c.pages[idx].Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	c.removePageAt(idx)
	return nil
}

// removePageAt drops the page at idx from the tracked set. The selection
// keeps pointing at the same page when that page survives; removing the
// selected tail entry clamps to the new tail.
func (c *Context) removePageAt(idx int) {
	c.pages = append(c.pages[:idx], c.pages[idx+1:]...)
	if idx < c.selected {
		c.selected--
	} else if c.selected >= len(c.pages) {
		c.selected = len(c.pages) - 1
	}
}

// SyncPages reconciles the tracked page set with the browser's current page
// targets. Pages opened outside the tools (operator tabs, window.open) are
// adopted into event capture; pages closed externally are dropped. The
// selected page stays selected when it survives the sync.
func (c *Context) SyncPages() error {
	if c.browser == nil {
		return nil
	}

	current, err := c.browser.Pages()
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	c.applyPageSet(current)
	return nil
}

func (c *Context) applyPageSet(current []*rod.Page) {
	var selectedID proto.TargetTargetID
	if c.selected >= 0 && c.selected < len(c.pages) {
		selectedID = c.pages[c.selected].TargetID
	}

	kept, added := reconcilePages(c.pages, current)
	c.pages = kept
	for _, p := range added {
		c.adopt(p)
	}

	c.selected = 0
	for i, p := range c.pages {
		if p.TargetID == selectedID {
			c.selected = i
			break
		}
	}
}

// reconcilePages splits the browser's current page set against the tracked
// one: kept is the tracked pages still alive, in tracked order; added is the
// current pages not yet tracked, in browser order. Pages are keyed by target
// id since the driver hands out fresh handles on every listing.
func reconcilePages(tracked, current []*rod.Page) (kept, added []*rod.Page) {
	alive := make(map[proto.TargetTargetID]bool, len(current))
	for _, p := range current {
		alive[p.TargetID] = true
	}

	known := make(map[proto.TargetTargetID]bool, len(tracked))
	for _, p := range tracked {
		if alive[p.TargetID] {
			kept = append(kept, p)
			known[p.TargetID] = true
		}
	}
	for _, p := range current {
		if !known[p.TargetID] {
			added = append(added, p)
		}
	}
	return kept, added
}

// adopt registers a page and starts console/network capture for it.
func (c *Context) adopt(p *rod.Page) {
	c.pages = append(c.pages, p)

	go p.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			c.recordConsole(e)
		},
		func(e *proto.NetworkRequestWillBeSent) {
			c.recordRequest(e)
		},
		func(e *proto.NetworkResponseReceived) {
			c.recordResponse(e)
		},
	)()
}

// RefreshDevToolsState re-checks whether an operator has opened an inspector
// window against the browser. The result is advisory state for handlers, not
// a fatal condition, so lookup failures only reset the flag.
func (c *Context) RefreshDevToolsState() {
	if c.browser == nil {
		return
	}

	res, err := proto.TargetGetTargets{}.Call(c.browser)
	if err != nil {
		c.devtoolsOpen = false
		return
	}
	for _, t := range res.TargetInfos {
		if strings.HasPrefix(t.URL, "devtools://") {
			c.devtoolsOpen = true
			return
		}
	}
	c.devtoolsOpen = false
}

// DevToolsOpen reports the result of the last RefreshDevToolsState call.
func (c *Context) DevToolsOpen() bool { return c.devtoolsOpen }

// TraceActive reports whether a performance recording is in progress.
func (c *Context) TraceActive() bool { return c.traceActive }

// SetTraceActive marks the start or end of a performance recording.
func (c *Context) SetTraceActive(active bool) { c.traceActive = active }

// ConsoleMessages returns a snapshot of the captured console log.
func (c *Context) ConsoleMessages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConsoleMessage, len(c.console))
	copy(out, c.console)
	return out
}

// NetworkRequests returns a snapshot of the observed network log.
func (c *Context) NetworkRequests() []NetworkRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]NetworkRequest, 0, len(c.network))
	for _, r := range c.network {
		out = append(out, *r)
	}
	return out
}

// FindNetworkRequest returns the most recent request matching url.
func (c *Context) FindNetworkRequest(url string) (NetworkRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.network) - 1; i >= 0; i-- {
		if c.network[i].URL == url {
			return *c.network[i], true
		}
	}
	return NetworkRequest{}, false
}

func (c *Context) recordConsole(e *proto.RuntimeConsoleAPICalled) {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		parts = append(parts, arg.Value.String())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.console = append(c.console, ConsoleMessage{
		Type: string(e.Type),
		Text: strings.Join(parts, " "),
	})
	if len(c.console) > consoleLimit {
		c.console = c.console[len(c.console)-consoleLimit:]
	}
}

func (c *Context) recordRequest(e *proto.NetworkRequestWillBeSent) {
	if e.Request == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byID == nil {
		c.byID = make(map[proto.NetworkRequestID]*NetworkRequest)
	}
	r := &NetworkRequest{URL: e.Request.URL, Method: e.Request.Method}
	c.network = append(c.network, r)
	c.byID[e.RequestID] = r
}

func (c *Context) recordResponse(e *proto.NetworkResponseReceived) {
	if e.Response == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byID[e.RequestID]; ok {
		r.Status = e.Response.Status
		r.MIMEType = e.Response.MIMEType
	}
}

// Close releases the context. A launched browser is shut down together with
// its process; an attached browser is left running for its operator.
func (c *Context) Close() {
	if c.launcher != nil {
		if err := c.browser.Close(); err != nil {
			c.log.Debug("browser close", zap.Error(err))
		}
		c.launcher.Kill()
		c.launcher.Cleanup()
	}
}
