package tools

import (
	"context"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var consoleTools = []*Tool{
	{
		Name:        "list_console_messages",
		Description: "List console messages captured from all tracked pages since the context was created.",
		Schema:      objectSchema(nil),
		Category:    CategoryOther,
		Handler:     listConsoleMessages,
	},
}

func listConsoleMessages(_ context.Context, _ Request, resp *Response, bctx *browser.Context) error {
	messages := bctx.ConsoleMessages()
	if len(messages) == 0 {
		resp.AppendLine("No console messages captured.")
		return nil
	}

	for _, m := range messages {
		resp.Appendf("%s> %s", m.Type, m.Text)
	}
	return nil
}
