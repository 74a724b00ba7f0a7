package tools

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

// maxScreenshotWidth bounds captures before they are attached; protocol
// clients choke on multi-megabyte images.
const maxScreenshotWidth = 2000

var screenshotTools = []*Tool{
	{
		Name:        "take_screenshot",
		Description: "Capture a screenshot of the selected page as PNG or JPEG.",
		Schema: objectSchema(map[string]*jsonschema.Schema{
			"format":   enumProp("Image format", "png", "jpeg"),
			"quality":  intProp("JPEG quality 0-100, ignored for PNG"),
			"fullPage": boolProp("Capture the full scrollable page instead of the viewport"),
		}),
		Category: CategoryOther,
		Handler:  takeScreenshot,
	},
}

func takeScreenshot(_ context.Context, req Request, resp *Response, bctx *browser.Context) error {
	p, err := bctx.SelectedPage()
	if err != nil {
		return err
	}

	format := proto.PageCaptureScreenshotFormatPng
	mimeType := "image/png"
	capture := &proto.PageCaptureScreenshot{Format: format}
	if req.String("format", "png") == "jpeg" {
		capture.Format = proto.PageCaptureScreenshotFormatJpeg
		mimeType = "image/jpeg"
		quality := req.Int("quality", 80)
		capture.Quality = &quality
	}

	data, err := p.Screenshot(req.Bool("fullPage", false), capture)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	data, mimeType, err = downscale(data, mimeType)
	if err != nil {
		return fmt.Errorf("downscale screenshot: %w", err)
	}

	resp.AppendLine("Screenshot captured.")
	resp.AttachImage(data, mimeType)
	return nil
}

// downscale re-encodes captures wider than maxScreenshotWidth. Oversized
// images are always re-encoded as JPEG since size is the concern.
func downscale(data []byte, mimeType string) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if img.Bounds().Dx() <= maxScreenshotWidth {
		return data, mimeType, nil
	}

	resized := imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
