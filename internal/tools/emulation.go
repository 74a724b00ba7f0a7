package tools

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

// networkProfiles maps emulation profile names to CDP network conditions.
// Throughput values are bytes per second, latency is milliseconds.
var networkProfiles = map[string]proto.NetworkEmulateNetworkConditions{
	"No emulation": {Offline: false, Latency: 0, DownloadThroughput: -1, UploadThroughput: -1},
	"Offline":      {Offline: true, Latency: 0, DownloadThroughput: 0, UploadThroughput: 0},
	"Slow 3G":      {Offline: false, Latency: 400, DownloadThroughput: 50 * 1024, UploadThroughput: 50 * 1024},
	"Fast 3G":      {Offline: false, Latency: 150, DownloadThroughput: 180 * 1024, UploadThroughput: 84 * 1024},
	"Slow 4G":      {Offline: false, Latency: 150, DownloadThroughput: 180 * 1024, UploadThroughput: 84 * 1024},
	"Fast 4G":      {Offline: false, Latency: 60, DownloadThroughput: 1024 * 1024, UploadThroughput: 300 * 1024},
}

var emulationTools = []*Tool{
	{
		Name:        "emulate_cpu",
		Description: "Throttle the selected page's CPU. A rate of 1 disables throttling; 4 means 4x slowdown.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"throttlingRate": numberProp("CPU slowdown multiplier between 1 and 20"),
		}, "throttlingRate"),
		Category: CategoryEmulation,
		Handler:  emulateCPU,
	},
	{
		Name:        "emulate_network",
		Description: "Emulate network conditions on the selected page (No emulation, Offline, Slow 3G, Fast 3G, Slow 4G, Fast 4G).",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"throttlingOption": enumProp("Named network profile",
				"No emulation", "Offline", "Slow 3G", "Fast 3G", "Slow 4G", "Fast 4G"),
		}, "throttlingOption"),
		Category: CategoryEmulation,
		Handler:  emulateNetwork,
	},
	{
		Name:        "resize_page",
		Description: "Resize the selected page's viewport.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"width":  intProp("Viewport width in pixels"),
			"height": intProp("Viewport height in pixels"),
		}, "width", "height"),
		Category: CategoryEmulation,
		Handler:  resizePage,
	},
}

func emulateCPU(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	rate := req.Float("throttlingRate", 1)
	if rate < 1 || rate > 20 {
		return fmt.Errorf("throttling rate %v out of range [1, 20]", rate)
	}
	if err := (proto.EmulationSetCPUThrottlingRate{Rate: rate}).Call(p); err != nil {
		return fmt.Errorf("set CPU throttling: %w", err)
	}
	resp.Appendf("CPU throttling set to %vx slowdown.", rate)
	return nil
}

func emulateNetwork(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	name := req.String("throttlingOption", "No emulation")
	conditions, ok := networkProfiles[name]
	if !ok {
		return fmt.Errorf("unknown network profile %q", name)
	}
	if err := conditions.Call(p); err != nil {
		return fmt.Errorf("emulate network: %w", err)
	}
	resp.Appendf("Network emulation set to %s.", name)
	return nil
}

func resizePage(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	width := req.Int("width", 0)
	height := req.Int("height", 0)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", width, height)
	}

	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("resize page: %w", err)
	}
	resp.Appendf("Page resized to %dx%d.", width, height)
	return nil
}
