// Package config resolves the immutable runtime configuration from the
// process environment. The resolved Config is read-only after Load returns;
// every other component treats it as a snapshot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultHTTPPort is used when the HTTP transport is selected without an
// explicit port.
const DefaultHTTPPort = 3000

// Viewport is the initial window size applied to launched browsers.
type Viewport struct {
	Width  int
	Height int
}

// Config is the resolved settings snapshot. Created once at startup and never
// mutated afterward.
type Config struct {
	// BrowserURL, when set, selects connect-to-existing mode. It may be an
	// http(s) debugging endpoint or a websocket address.
	BrowserURL string

	// Launch options, used only when BrowserURL is empty.
	Headless         bool
	ExecutablePath   string
	Channel          string
	Isolated         bool
	Viewport         *Viewport
	ProxyServer      string
	IgnoreCertErrors bool
	ChromeArgs       []string
	DevTools         bool

	// HTTPEnabled selects the multi-session HTTP transport; when false the
	// server speaks MCP over stdio.
	HTTPEnabled bool
	HTTPPort    int

	// Category toggles. Default enabled; a true value removes the category
	// from the exposed catalogue entirely.
	NoPerformance bool
	NoNetwork     bool
	NoEmulation   bool

	// Production controls the HTTP bind address and suppresses the
	// development-mode startup hints.
	Production bool
}

// Load resolves the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment variables
// win over file values.
func Load() (*Config, error) {
	// Missing .env is the normal case for installed binaries.
	_ = godotenv.Load(".env")

	var err error
	readBool := func(key string) bool {
		if err != nil {
			return false
		}
		var v bool
		v, err = getBool(key, false)
		return v
	}

	cfg := &Config{
		BrowserURL:       getString("CHROME_MCP_BROWSER_URL", ""),
		Headless:         readBool("CHROME_MCP_HEADLESS"),
		ExecutablePath:   getString("CHROME_MCP_EXECUTABLE_PATH", ""),
		Channel:          getString("CHROME_MCP_CHANNEL", ""),
		Isolated:         readBool("CHROME_MCP_ISOLATED"),
		ProxyServer:      getString("CHROME_MCP_PROXY", ""),
		IgnoreCertErrors: readBool("CHROME_MCP_IGNORE_CERT_ERRORS"),
		DevTools:         readBool("CHROME_MCP_DEVTOOLS"),
		NoPerformance:    readBool("CHROME_MCP_NO_PERFORMANCE"),
		NoNetwork:        readBool("CHROME_MCP_NO_NETWORK"),
		NoEmulation:      readBool("CHROME_MCP_NO_EMULATION"),
		Production:       getString("APP_ENV", "dev") == "production",
	}
	if err != nil {
		return nil, err
	}

	if args := getString("CHROME_MCP_CHROME_ARGS", ""); args != "" {
		cfg.ChromeArgs = strings.Fields(args)
	}

	if raw := getString("CHROME_MCP_VIEWPORT", ""); raw != "" {
		vp, err := ParseViewport(raw)
		if err != nil {
			return nil, err
		}
		cfg.Viewport = vp
	}

	// Presence of the port variable selects the HTTP transport.
	if raw := getString("CHROME_MCP_HTTP_PORT", ""); raw != "" {
		cfg.HTTPEnabled = true
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHROME_MCP_HTTP_PORT %q: %w", raw, err)
		}
		if port == 0 {
			port = DefaultHTTPPort
		}
		cfg.HTTPPort = port
	}

	return cfg, nil
}

// ParseViewport parses a "WIDTHxHEIGHT" specification such as "1280x720".
func ParseViewport(raw string) (*Viewport, error) {
	w, h, ok := strings.Cut(raw, "x")
	if !ok {
		return nil, fmt.Errorf("invalid viewport %q: expected WIDTHxHEIGHT", raw)
	}

	width, err := strconv.Atoi(w)
	if err != nil {
		return nil, fmt.Errorf("invalid viewport width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return nil, fmt.Errorf("invalid viewport height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport %q: dimensions must be positive", raw)
	}

	return &Viewport{Width: width, Height: height}, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: expected a boolean", key, v)
	}
	return parsed, nil
}
