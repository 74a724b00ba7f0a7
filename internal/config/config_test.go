package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.False(t, cfg.HTTPEnabled)
	require.False(t, cfg.Headless)
	require.False(t, cfg.Production)
	require.False(t, cfg.NoPerformance)
	require.False(t, cfg.NoNetwork)
	require.False(t, cfg.NoEmulation)
	require.Empty(t, cfg.BrowserURL)
	require.Nil(t, cfg.Viewport)
}

func TestLoadHTTPPortSelectsTransport(t *testing.T) {
	t.Setenv("CHROME_MCP_HTTP_PORT", "8123")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.HTTPEnabled)
	require.Equal(t, 8123, cfg.HTTPPort)
}

func TestLoadHTTPPortZeroUsesDefault(t *testing.T) {
	t.Setenv("CHROME_MCP_HTTP_PORT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.HTTPEnabled)
	require.Equal(t, DefaultHTTPPort, cfg.HTTPPort)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("CHROME_MCP_HTTP_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedBool(t *testing.T) {
	t.Setenv("CHROME_MCP_HEADLESS", "yes")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "CHROME_MCP_HEADLESS")
}

func TestLoadFullEnvironment(t *testing.T) {
	t.Setenv("CHROME_MCP_BROWSER_URL", "http://127.0.0.1:9222")
	t.Setenv("CHROME_MCP_HEADLESS", "true")
	t.Setenv("CHROME_MCP_ISOLATED", "1")
	t.Setenv("CHROME_MCP_VIEWPORT", "1280x720")
	t.Setenv("CHROME_MCP_CHROME_ARGS", "--disable-gpu --lang=en-US")
	t.Setenv("CHROME_MCP_NO_NETWORK", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9222", cfg.BrowserURL)
	require.True(t, cfg.Headless)
	require.True(t, cfg.Isolated)
	require.Equal(t, &Viewport{Width: 1280, Height: 720}, cfg.Viewport)
	require.Equal(t, []string{"--disable-gpu", "--lang=en-US"}, cfg.ChromeArgs)
	require.True(t, cfg.NoNetwork)
	require.True(t, cfg.Production)
}

func TestParseViewport(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Viewport
		wantErr bool
	}{
		{name: "valid", raw: "1920x1080", want: &Viewport{Width: 1920, Height: 1080}},
		{name: "missing separator", raw: "1920", wantErr: true},
		{name: "non numeric width", raw: "wx1080", wantErr: true},
		{name: "non numeric height", raw: "1920xh", wantErr: true},
		{name: "zero width", raw: "0x1080", wantErr: true},
		{name: "negative height", raw: "1920x-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseViewport(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
