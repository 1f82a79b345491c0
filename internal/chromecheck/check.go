// Package chromecheck verifies that a Chrome browser can be launched and
// driven through the DevTools protocol.
package chromecheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ErrUnavailable wraps every failure to launch or drive the browser.
var ErrUnavailable = errors.New("chrome is not available")

// Config configures the probe.
type Config struct {
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	// RemoteURL connects to a running browser instead of launching one.
	RemoteURL string
	// NoSandbox is required when running as root, e.g. in containers.
	NoSandbox bool
	Timeout   time.Duration
}

// Info describes the browser that answered the probe.
type Info struct {
	Product         string
	ProtocolVersion string
	UserAgent       string
	Elapsed         time.Duration
}

// Launcher starts a browser, reads its version and shuts it down.
type Launcher interface {
	Launch(ctx context.Context, cfg Config) (Info, error)
}

// Checker runs the probe.
type Checker struct {
	cfg      Config
	launcher Launcher
	logger   *zap.Logger
}

// NewChecker creates a Checker backed by chromedp. A nil launcher selects
// the chromedp implementation.
func NewChecker(cfg Config, launcher Launcher, logger *zap.Logger) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if launcher == nil {
		launcher = ChromedpLauncher{logger: logger}
	}

	return &Checker{cfg: cfg, launcher: launcher, logger: logger.Named("chromecheck")}
}

// Check launches the browser once. Every failure is wrapped in ErrUnavailable.
func (c *Checker) Check(ctx context.Context) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	info, err := c.launcher.Launch(ctx, c.cfg)
	info.Elapsed = time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v: %w", c.cfg.Timeout, err)
		}
		c.logger.Error("Chrome check failed", zap.Error(err), zap.Duration("elapsed", info.Elapsed))

		return info, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.logger.Info("Chrome check succeeded",
		zap.String("product", info.Product),
		zap.String("protocolVersion", info.ProtocolVersion),
		zap.Duration("elapsed", info.Elapsed),
	)

	return info, nil
}

// ExitCode maps the result of Check to a process exit code.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}

	return 0
}

// ChromedpLauncher launches Chrome through chromedp.
type ChromedpLauncher struct {
	logger *zap.Logger
}

// Launch implements Launcher.
func (l ChromedpLauncher) Launch(ctx context.Context, cfg Config) (Info, error) {
	allocCtx, allocCancel := newAllocator(ctx, cfg)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			if l.logger != nil {
				l.logger.Debug(fmt.Sprintf(format, args...))
			}
		}),
	)
	defer browserCancel()

	var info Info
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			protocol, product, _, userAgent, _, err := browser.GetVersion().Do(ctx)
			if err != nil {
				return err
			}
			info.ProtocolVersion = protocol
			info.Product = product
			info.UserAgent = userAgent

			return nil
		}),
	)
	if err != nil {
		return info, err
	}

	// Closing the browser context quits Chrome; report a failed quit too.
	if err := chromedp.Cancel(browserCtx); err != nil && !errors.Is(err, context.Canceled) {
		return info, fmt.Errorf("failed to quit browser: %w", err)
	}

	return info, nil
}

func newAllocator(ctx context.Context, cfg Config) (context.Context, context.CancelFunc) {
	if cfg.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	return chromedp.NewExecAllocator(ctx, opts...)
}
