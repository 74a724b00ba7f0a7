package tools

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var inputTools = []*Tool{
	{
		Name:        "click",
		Description: "Click the element matching a CSS selector on the selected page.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"selector": stringProp("CSS selector of the element to click"),
			"dblClick": boolProp("Perform a double click instead of a single click"),
		}, "selector"),
		Category: CategoryOther,
		Handler:  click,
	},
	{
		Name:        "fill",
		Description: "Focus the element matching a CSS selector and type the given text into it.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"selector": stringProp("CSS selector of the input element"),
			"value":    stringProp("Text to type into the element"),
		}, "selector", "value"),
		Category: CategoryOther,
		Handler:  fill,
	},
	{
		Name:        "hover",
		Description: "Hover over the element matching a CSS selector on the selected page.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"selector": stringProp("CSS selector of the element to hover"),
		}, "selector"),
		Category: CategoryOther,
		Handler:  hover,
	},
}

func click(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	selector := req.String("selector", "")
	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}

	count := 1
	if req.Bool("dblClick", false) {
		count = 2
	}
	if err := el.Click(proto.InputMouseButtonLeft, count); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	resp.Appendf("Clicked %s.", selector)
	return nil
}

func fill(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	selector := req.String("selector", "")
	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}

	// Clear any existing value first so fill is idempotent.
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text in %q: %w", selector, err)
	}
	if err := el.Input(req.String("value", "")); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	resp.Appendf("Filled %s.", selector)
	return nil
}

func hover(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	selector := req.String("selector", "")
	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Hover(); err != nil {
		return fmt.Errorf("hover %q: %w", selector, err)
	}
	resp.Appendf("Hovered over %s.", selector)
	return nil
}
