package tools

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

var performanceTools = []*Tool{
	{
		Name:        "performance_start_trace",
		Description: "Start recording performance metrics on the selected page, optionally reloading it to capture load-time behavior.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"reload": boolProp("Reload the page after recording starts"),
		}),
		Category: CategoryPerformance,
		Handler:  performanceStartTrace,
	},
	{
		Name:        "performance_stop_trace",
		Description: "Stop the active performance recording and report the collected metrics.",
		Schema:      objectSchema(nil),
		Category:    CategoryPerformance,
		Handler:     performanceStopTrace,
	},
}

func performanceStartTrace(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	if bctx.TraceActive() {
		return fmt.Errorf("a performance recording is already in progress; stop it first")
	}

	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	if err := (proto.PerformanceEnable{}).Call(p); err != nil {
		return fmt.Errorf("enable performance domain: %w", err)
	}
	bctx.SetTraceActive(true)

	if req.Bool("reload", false) {
		if err := p.Reload(); err != nil {
			return fmt.Errorf("reload page: %w", err)
		}
		if err := p.WaitLoad(); err != nil {
			return fmt.Errorf("wait for load: %w", err)
		}
		resp.AppendLine("Recording started; page reloaded.")
		return nil
	}

	resp.AppendLine("Recording started.")
	return nil
}

func performanceStopTrace(_ context.Context, _ Request, resp *Response, bctx *browser.Context) error {
	if !bctx.TraceActive() {
		return fmt.Errorf("no performance recording in progress")
	}

	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	metrics, err := proto.PerformanceGetMetrics{}.Call(p)
	if err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}
	if err := (proto.PerformanceDisable{}).Call(p); err != nil {
		return fmt.Errorf("disable performance domain: %w", err)
	}
	bctx.SetTraceActive(false)

	resp.AppendLine("Recording stopped. Collected metrics:")
	for _, m := range metrics.Metrics {
		resp.Appendf("%s: %v", m.Name, m.Value)
	}
	return nil
}
