package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ppiankov/docketscan/internal/model"
)

// Chrome drives a single Chrome tab through the DevTools protocol
type Chrome struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	waitTimeout time.Duration
}

// NewChrome launches (or attaches to) Chrome and opens the tab every stage
// of the run will share
func NewChrome(cfg model.BrowserConfig) (*Chrome, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc

	if cfg.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	}

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser now so launch failures surface before the run
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	waitTimeout := cfg.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}

	return &Chrome{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		waitTimeout: waitTimeout,
	}, nil
}

// allocatorOptions builds the exec allocator flags for a local Chrome
func allocatorOptions(cfg model.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyServer))
	}
	return opts
}

// run executes actions on the shared tab, bounded by the wait timeout and
// cancelled together with the caller's context
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.tabCtx, c.waitTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the shared tab
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

// WaitReady blocks until selector matches an element in the DOM
func (c *Chrome) WaitReady(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// Source returns the outer HTML of the document element
func (c *Chrome) Source(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// SendKeys types text into the element matching selector
func (c *Chrome) SendKeys(ctx context.Context, selector, text string) error {
	return c.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// Click clicks the element matching selector once it is visible
func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// Close shuts the tab and the browser process
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelAlloc()
	return nil
}
