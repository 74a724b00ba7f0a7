package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var pageTools = []*Tool{
	{
		Name:        "list_pages",
		Description: "List all open pages with their URLs and the currently selected page.",
		Schema:      objectSchema(nil),
		Category:    CategoryOther,
		Handler:     listPages,
	},
	{
		Name:        "new_page",
		Description: "Open a new page at the given URL and select it.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"url": stringProp("URL to open in the new page"),
		}, "url"),
		Category: CategoryOther,
		Handler:  newPage,
	},
	{
		Name:        "select_page",
		Description: "Select the page at the given index as the target for subsequent tool calls.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"pageIdx": intProp("Index of the page to select, as reported by list_pages"),
		}, "pageIdx"),
		Category: CategoryOther,
		Handler:  selectPage,
	},
	{
		Name:        "close_page",
		Description: "Close the page at the given index. The last open page cannot be closed.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"pageIdx": intProp("Index of the page to close, as reported by list_pages"),
		}, "pageIdx"),
		Category: CategoryOther,
		Handler:  closePage,
	},
	{
		Name:        "navigate_page",
		Description: "Navigate the selected page to a URL and wait for the load event.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"url": stringProp("URL to navigate to"),
		}, "url"),
		Category: CategoryOther,
		Handler:  navigatePage,
	},
	{
		Name:        "navigate_page_history",
		Description: "Navigate the selected page back or forward in its history.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"navigate": enumProp("Direction to navigate", "back", "forward"),
		}, "navigate"),
		Category: CategoryOther,
		Handler:  navigatePageHistory,
	},
}

func listPages(_ context.Context, _ Request, resp *Response, _ *browser.Context) error {
	resp.SetIncludePages()
	return nil
}

func newPage(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	url := req.String("url", "")
	if _, err := bctx.NewPage(url); err != nil {
		return err
	}
	resp.Appendf("Opened and selected new page at %s.", url)
	resp.SetIncludePages()
	return nil
}

func selectPage(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	idx := req.Int("pageIdx", -1)
	if err := bctx.SelectPage(idx); err != nil {
		return err
	}
	resp.Appendf("Selected page %d.", idx)
	resp.SetIncludePages()
	return nil
}

func closePage(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	idx := req.Int("pageIdx", -1)
	if err := bctx.ClosePage(idx); err != nil {
		return err
	}
	resp.Appendf("Closed page %d.", idx)
	resp.SetIncludePages()
	return nil
}

func navigatePage(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	url := req.String("url", "")
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	resp.Appendf("Navigated to %s.", url)
	return nil
}

func navigatePageHistory(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	switch dir := req.String("navigate", ""); dir {
	case "back":
		if err := p.NavigateBack(); err != nil {
			return fmt.Errorf("navigate back: %w", err)
		}
		resp.AppendLine("Navigated back.")
	case "forward":
		if err := p.NavigateForward(); err != nil {
			return fmt.Errorf("navigate forward: %w", err)
		}
		resp.AppendLine("Navigated forward.")
	default:
		return fmt.Errorf("unknown history direction %q", dir)
	}
	return nil
}
