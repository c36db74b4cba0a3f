// Package browser implements the capability provider over headless
// Chrome via chromedp. One Browser owns the shared Chrome process; each
// worker gets its own isolated Session (a dedicated tab context).
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/internal/scrape"
)

// Options configures the shared Chrome process.
type Options struct {
	Headless      bool
	UserAgent     string
	ChromePath    string
	Proxy         string
	ActionTimeout time.Duration // default per element operation
	SettleDelay   time.Duration // extra wait inside WaitStable
}

// Browser wraps the exec allocator and the root browser context. The
// handle is shared read-only: sessions derive from it but never share
// page state.
type Browser struct {
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options

	mu     sync.Mutex
	closed bool
}

// Launch starts Chrome and verifies it responds. The returned Browser
// must be closed to release the process.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 5 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1366,768"),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	// The first context owns the browser process; sessions are tabs
	// created from it.
	rootCtx, rootCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(rootCtx, chromedp.Navigate("about:blank")); err != nil {
		rootCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info().
		Str("chrome_path", chromePath).
		Bool("headless", opts.Headless).
		Msg("Browser ready")

	return &Browser{
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
		allocCancel: allocCancel,
		opts:        opts,
	}, nil
}

// NewSession opens a fresh tab context. The caller owns it for the
// lifetime of one item and must Close it on every exit path.
func (b *Browser) NewSession(ctx context.Context) (scrape.Session, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("browser is closed")
	}
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.rootCtx)
	return &Session{
		ctx:           tabCtx,
		cancel:        tabCancel,
		actionTimeout: b.opts.ActionTimeout,
		settleDelay:   b.opts.SettleDelay,
	}, nil
}

// Close shuts down all sessions and the Chrome process. Idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	b.rootCancel()
	b.allocCancel()
	log.Info().Msg("Browser closed")
	return nil
}
