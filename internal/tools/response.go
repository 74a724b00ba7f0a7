package tools

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

// Response accumulates the content a tool handler produces. Nothing is
// visible to the client until Finalize converts the accumulated state into a
// wire-level result; handlers never stream.
type Response struct {
	lines          []string
	images         []attachment
	deferred       []func(bctx *browser.Context) ([]string, error)
	includePages   bool
	includeNetwork bool
}

type attachment struct {
	data     []byte
	mimeType string
}

// NewResponse returns an empty accumulator.
func NewResponse() *Response {
	return &Response{}
}

// AppendLine adds one line of text content.
func (r *Response) AppendLine(line string) {
	r.lines = append(r.lines, line)
}

// Appendf adds one formatted line of text content.
func (r *Response) Appendf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

// AttachImage adds an image content item.
func (r *Response) AttachImage(data []byte, mimeType string) {
	r.images = append(r.images, attachment{data: data, mimeType: mimeType})
}

// Defer registers a section that is rendered during finalization, after the
// handler has returned. A deferred section failing fails finalization.
func (r *Response) Defer(fn func(bctx *browser.Context) ([]string, error)) {
	r.deferred = append(r.deferred, fn)
}

// SetIncludePages requests that the current page list is appended during
// finalization. The listing is evaluated lazily, after the handler returns.
func (r *Response) SetIncludePages() {
	r.includePages = true
}

// SetIncludeNetworkRequests requests that the network log is appended during
// finalization.
func (r *Response) SetIncludeNetworkRequests() {
	r.includeNetwork = true
}

// Finalize renders the accumulated content into the protocol result shape.
// The deferred sections are evaluated here; a failure at this stage is the
// caller's signal to soft-land the call as an error-flagged result.
func (r *Response) Finalize(bctx *browser.Context) (*mcp.CallToolResult, error) {
	lines := make([]string, 0, len(r.lines)+8)
	lines = append(lines, r.lines...)

	if bctx != nil && bctx.DevToolsOpen() {
		lines = append(lines, "Note: a DevTools window is open against the browser; automation may observe operator-driven changes.")
	}

	for _, fn := range r.deferred {
		section, err := fn(bctx)
		if err != nil {
			return nil, err
		}
		lines = append(lines, section...)
	}

	if r.includePages {
		section, err := renderPages(bctx)
		if err != nil {
			return nil, fmt.Errorf("list open pages: %w", err)
		}
		lines = append(lines, section...)
	}

	if r.includeNetwork {
		lines = append(lines, renderNetwork(bctx)...)
	}

	content := []mcp.Content{
		&mcp.TextContent{Text: strings.Join(lines, "\n")},
	}
	for _, img := range r.images {
		content = append(content, &mcp.ImageContent{Data: img.data, MIMEType: img.mimeType})
	}

	return &mcp.CallToolResult{Content: content}, nil
}

func renderPages(bctx *browser.Context) ([]string, error) {
	if bctx == nil {
		return nil, nil
	}

	lines := []string{"", "## Pages"}
	for i, p := range bctx.Pages() {
		info, err := p.Info()
		if err != nil {
			return nil, err
		}
		marker := ""
		if i == bctx.SelectedIndex() {
			marker = " [selected]"
		}
		lines = append(lines, fmt.Sprintf("%d: %s%s", i, info.URL, marker))
	}
	return lines, nil
}

func renderNetwork(bctx *browser.Context) []string {
	if bctx == nil {
		return nil
	}

	lines := []string{"", "## Network requests"}
	for _, req := range bctx.NetworkRequests() {
		status := "pending"
		if req.Status != 0 {
			status = fmt.Sprintf("%d", req.Status)
		}
		lines = append(lines, fmt.Sprintf("%s %s [%s]", req.Method, req.URL, status))
	}
	return lines
}

// ErrorResult builds an error-flagged protocol result. The call still
// succeeds at the protocol level; the error travels as text content.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
