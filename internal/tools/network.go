package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var networkTools = []*Tool{
	{
		Name:        "list_network_requests",
		Description: "List network requests observed on tracked pages since the context was created.",
		Schema:      objectSchema(nil),
		Category:    CategoryNetwork,
		Handler:     listNetworkRequests,
	},
	{
		Name:        "get_network_request",
		Description: "Get details of the most recent network request matching a URL.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"url": stringProp("Exact URL of the request to look up"),
		}, "url"),
		Category: CategoryNetwork,
		Handler:  getNetworkRequest,
	},
}

func listNetworkRequests(_ context.Context, _ Request, resp *Response, _ *browser.Context) error {
	resp.SetIncludeNetworkRequests()
	return nil
}

func getNetworkRequest(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	url := req.String("url", "")
	r, ok := bctx.FindNetworkRequest(url)
	if !ok {
		return fmt.Errorf("no request found for %s", url)
	}

	resp.Appendf("%s %s", r.Method, r.URL)
	if r.Status == 0 {
		resp.AppendLine("Status: pending")
	} else {
		resp.Appendf("Status: %d", r.Status)
		resp.Appendf("MIME type: %s", r.MIMEType)
	}
	return nil
}
