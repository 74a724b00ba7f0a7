package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var scriptTools = []*Tool{
	{
		Name:        "evaluate_script",
		Description: "Evaluate a JavaScript function on the selected page and return its result as JSON. The script must be a function expression, e.g. \"() => document.title\".",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"function": stringProp("JavaScript function expression to evaluate"),
		}, "function"),
		Category: CategoryOther,
		Handler:  evaluateScript,
	},
}

func evaluateScript(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	fn := req.String("function", "")
	res, err := p.Eval(fn)
	if err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}

	resp.AppendLine("Script result:")
	resp.AppendLine(res.Value.JSON("", "  "))
	return nil
}
