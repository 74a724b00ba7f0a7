// Package browser owns the live connection to the automated Chrome instance
// and the derived state tool handlers consult: the open page set, the console
// and network logs, and whether an operator has a devtools window open.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
)

// ConnectError indicates failure to attach to an existing browser endpoint.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to browser at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// LaunchError indicates failure to start a new browser instance.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch browser: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// connect attaches to an existing browser via its remote debugging endpoint.
// Both http(s) debugging URLs and raw websocket addresses are accepted.
func connect(cfg *config.Config, log *zap.Logger) (*rod.Browser, error) {
	u, err := launcher.ResolveURL(cfg.BrowserURL)
	if err != nil {
		return nil, &ConnectError{Endpoint: cfg.BrowserURL, Err: err}
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, &ConnectError{Endpoint: cfg.BrowserURL, Err: err}
	}

	log.Info("attached to existing browser", zap.String("endpoint", cfg.BrowserURL))
	return b, nil
}

// launch starts a fresh browser instance with the configured options. The
// returned launcher is kept so the spawned process can be killed on close.
func launch(cfg *config.Config, log *zap.Logger) (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools)

	if cfg.ExecutablePath != "" {
		l = l.Bin(cfg.ExecutablePath)
	} else if cfg.Channel != "" {
		if bin, err := channelBinary(cfg.Channel); err != nil {
			return nil, nil, &LaunchError{Err: err}
		} else if bin != "" {
			l = l.Bin(bin)
		}
	}

	if cfg.Isolated {
		dir, err := os.MkdirTemp("", "chrome-devtools-mcp-profile-")
		if err != nil {
			return nil, nil, &LaunchError{Err: err}
		}
		l = l.UserDataDir(dir)
	}
	if cfg.ProxyServer != "" {
		l = l.Proxy(cfg.ProxyServer)
	}
	if cfg.IgnoreCertErrors {
		l = l.Set("ignore-certificate-errors")
	}
	if cfg.Viewport != nil {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.Viewport.Width, cfg.Viewport.Height))
	}
	for _, arg := range cfg.ChromeArgs {
		name, values := cutFlag(arg)
		l = l.Set(flags.Flag(name), values...)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, &LaunchError{Err: err}
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, nil, &LaunchError{Err: err}
	}

	log.Info("launched browser",
		zap.Bool("headless", cfg.Headless),
		zap.Bool("isolated", cfg.Isolated),
		zap.String("channel", cfg.Channel))
	return b, l, nil
}

// channelBinary maps a release channel name to a well-known binary name that
// the launcher resolves through PATH. An empty result keeps the launcher's
// own browser discovery.
func channelBinary(channel string) (string, error) {
	names := map[string]string{
		"stable": "",
		"beta":   "google-chrome-beta",
		"dev":    "google-chrome-unstable",
		"canary": "google-chrome-canary",
	}
	bin, ok := names[channel]
	if !ok {
		return "", fmt.Errorf("unknown browser channel %q", channel)
	}
	if bin == "" {
		return "", nil
	}
	if path, err := exec.LookPath(bin); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("browser channel %q not installed (%s not found)", channel, bin)
}

// cutFlag splits "--flag=value" or "flag=value" into the launcher's
// flag/value form.
func cutFlag(arg string) (string, []string) {
	arg = strings.TrimPrefix(arg, "--")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, []string{value}
	}
	return arg, nil
}
