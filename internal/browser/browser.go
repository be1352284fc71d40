package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// Browser drives a headless Chrome instance and returns rendered page HTML.
// One Browser runs one Chrome process; each fetch opens a fresh tab so
// pages cannot leak state into each other.
type Browser struct {
	// allocCtx and allocCancel own the Chrome process.
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// browserCtx and browserCancel own the first browser session, which
	// every tab descends from.
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// limiter spaces navigations out; FencingTimeLive serves everything
	// from one origin.
	limiter *rate.Limiter

	// timeout bounds one navigation including its settle delay.
	timeout time.Duration

	// navigationDelay is the settle time after the DOM is ready, giving
	// the page's own XHR calls time to fill in tables.
	navigationDelay time.Duration

	headless  bool
	userAgent string
	execPath  string

	viewportWidth  int
	viewportHeight int

	wideViewportWidth  int
	wideViewportHeight int
}

// Option configures a Browser.
type Option func(*Browser)

// WithHeadless controls whether Chrome runs without a visible window.
func WithHeadless(headless bool) Option {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithUserAgent sets the User-Agent Chrome reports.
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithExecPath points at a specific Chrome or Chromium binary instead of
// searching the usual install locations. The container image sets this to
// its bundled chromium.
func WithExecPath(path string) Option {
	return func(b *Browser) {
		b.execPath = path
	}
}

// WithTimeout bounds each navigation.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithNavigationDelay sets the settle time after the DOM is ready before
// the snapshot is taken.
func WithNavigationDelay(d time.Duration) Option {
	return func(b *Browser) {
		b.navigationDelay = d
	}
}

// WithViewport sets the viewport for regular pages.
func WithViewport(width, height int) Option {
	return func(b *Browser) {
		b.viewportWidth = width
		b.viewportHeight = height
	}
}

// WithWideViewport sets the viewport used by FetchHTMLWide. Bracket pages
// lay out horizontally and clip cells out of the DOM at normal widths.
func WithWideViewport(width, height int) Option {
	return func(b *Browser) {
		b.wideViewportWidth = width
		b.wideViewportHeight = height
	}
}

// WithRequestsPerSecond caps navigation frequency.
func WithRequestsPerSecond(rps float64) Option {
	return func(b *Browser) {
		b.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// New starts a headless Chrome process and returns a Browser bound to it.
// The context owns the process lifetime; Close shuts the browser down
// before the context ends.
func New(ctx context.Context, opts ...Option) (*Browser, error) {
	b := &Browser{
		limiter:            rate.NewLimiter(rate.Limit(2.0), 1),
		timeout:            60 * time.Second,
		navigationDelay:    2 * time.Second,
		headless:           true,
		viewportWidth:      1280,
		viewportHeight:     800,
		wideViewportWidth:  3000,
		wideViewportHeight: 2000,
	}

	for _, opt := range opts {
		opt(b)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.userAgent))
	}
	if b.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.execPath))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// Run with no actions starts Chrome now, so a missing binary fails
	// here instead of on the first page.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.browserCancel()
		b.allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return b, nil
}

// Close shuts the browser down and releases the Chrome process.
func (b *Browser) Close() error {
	err := chromedp.Cancel(b.browserCtx)
	b.allocCancel()
	if err != nil {
		return fmt.Errorf("failed to shut down browser: %w", err)
	}
	return nil
}

// FetchHTML navigates to a page, waits for rendering to settle, and
// returns the outer HTML of the document.
func (b *Browser) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	return b.fetch(ctx, pageURL, b.viewportWidth, b.viewportHeight)
}

// FetchHTMLWide is FetchHTML with the wide viewport, for direct
// elimination pages.
func (b *Browser) FetchHTMLWide(ctx context.Context, pageURL string) (string, error) {
	return b.fetch(ctx, pageURL, b.wideViewportWidth, b.wideViewportHeight)
}

// fetch renders one page in a fresh tab at the given viewport.
func (b *Browser) fetch(ctx context.Context, pageURL string, width, height int) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	tabCtx, cancelTab, err := b.newTab(ctx)
	if err != nil {
		return "", err
	}
	defer cancelTab()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.navigationDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	return html, nil
}

// PollStringSlice navigates to a page and repeatedly evaluates a
// JavaScript expression until it yields a non-empty string slice. The pool
// scores page fills window.ids in asynchronously with no DOM signal, so
// polling is the only way to know when it has arrived.
func (b *Browser) PollStringSlice(ctx context.Context, pageURL, expr string, attempts int, interval time.Duration) ([]string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tabCtx, cancelTab, err := b.newTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancelTab()

	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(b.viewportWidth), int64(b.viewportHeight)),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	for attempt := 0; attempt < attempts; attempt++ {
		var values []string
		// Evaluation errors mean the variable isn't defined yet; keep
		// polling until the attempts run out.
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(expr, &values)); err == nil && len(values) > 0 {
			return values, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-tabCtx.Done():
			timer.Stop()
			return nil, tabCtx.Err()
		}
		timer.Stop()
	}

	return nil, fmt.Errorf("%w: %s never yielded values on %s", ErrPollTimeout, expr, pageURL)
}

// newTab opens a fresh tab with the navigation timeout applied, wired so
// that cancelling the caller's context tears the tab down too.
func (b *Browser) newTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if b.browserCtx == nil || b.browserCtx.Err() != nil {
		return nil, nil, ErrBrowserClosed
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)

	// Tab contexts descend from the browser, not from the caller, so the
	// caller's cancellation has to be forwarded by hand.
	stopWatch := context.AfterFunc(ctx, cancelTab)

	cancel := func() {
		stopWatch()
		cancelTimeout()
		cancelTab()
	}
	return tabCtx, cancel, nil
}
