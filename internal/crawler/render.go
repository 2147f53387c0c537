package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nao1215/recipescout/internal/model"
)

// Renderer loads a page in a headless browser and returns the final DOM.
// Implementations return ErrRenderUnavailable when no browser can be started
// and ErrRenderTimeout when navigation does not finish in time.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (*model.Page, error)
}

// browserNames are the executables chromedp can drive, in lookup order.
var browserNames = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// RenderOptions configures the headless browser.
type RenderOptions struct {
	// Timeout bounds a single render, navigation included.
	Timeout time.Duration

	// UserAgent overrides the browser's User-Agent.
	UserAgent string

	// Headless runs the browser without a window. Disabling it is a debugging aid.
	Headless bool

	// ViewportWidth and ViewportHeight set the window size.
	ViewportWidth  int
	ViewportHeight int

	// Settle is the wait after navigation and after each scroll step.
	// Lazy-loaded listings only fill in once the page is scrolled.
	Settle time.Duration

	// ExecPath points at the browser executable. Empty means look it up on PATH.
	ExecPath string

	// MaxBodySize caps the returned HTML.
	MaxBodySize int64

	// ConcurrentSessions bounds simultaneously running browsers.
	ConcurrentSessions int
}

// DefaultRenderOptions returns a 1920x1080 headless profile.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Timeout:            30 * time.Second,
		Headless:           true,
		ViewportWidth:      1920,
		ViewportHeight:     1080,
		Settle:             time.Second,
		MaxBodySize:        model.MaxPageSize,
		ConcurrentSessions: 1,
	}
}

// ChromedpRenderer renders pages with a headless Chrome driven by chromedp.
type ChromedpRenderer struct {
	opts      RenderOptions
	semaphore chan struct{}
	logger    *slog.Logger
}

// NewChromedpRenderer constructs a renderer with bounded concurrency.
func NewChromedpRenderer(opts RenderOptions, logger *slog.Logger) *ChromedpRenderer {
	defaults := DefaultRenderOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = defaults.ViewportWidth, defaults.ViewportHeight
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaults.MaxBodySize
	}
	if opts.ConcurrentSessions <= 0 {
		opts.ConcurrentSessions = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpRenderer{
		opts:      opts,
		semaphore: make(chan struct{}, opts.ConcurrentSessions),
		logger:    logger,
	}
}

// Available reports whether a browser executable can be found.
func (r *ChromedpRenderer) Available() bool {
	return r.execPath() != ""
}

func (r *ChromedpRenderer) execPath() string {
	if r.opts.ExecPath != "" {
		if p, err := exec.LookPath(r.opts.ExecPath); err == nil {
			return p
		}
		return ""
	}
	for _, name := range browserNames {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// Render navigates to rawURL, scrolls the page in three steps so lazy content
// loads, and returns the outer HTML with its links extracted.
func (r *ChromedpRenderer) Render(parentCtx context.Context, rawURL string) (*model.Page, error) {
	execPath := r.execPath()
	if execPath == "" {
		return nil, ErrRenderUnavailable
	}

	logger := r.logger.With("url", rawURL, "timeout", r.opts.Timeout.String())

	select {
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	case <-parentCtx.Done():
		return nil, parentCtx.Err()
	}

	ctx, cancel := context.WithTimeout(parentCtx, r.opts.Timeout)
	defer cancel()

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(r.opts.ViewportWidth, r.opts.ViewportHeight),
	}
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	var html, finalURL, title string
	var scrolled bool
	actions := []chromedp.Action{
		chromedp.Navigate(rawURL),
		chromedp.Sleep(r.opts.Settle),
	}
	for _, fraction := range []string{"/ 3", "/ 2", ""} {
		actions = append(actions,
			chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight %s); true", fraction), &scrolled),
			chromedp.Sleep(r.opts.Settle/3),
		)
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
	)

	start := time.Now()
	if err := chromedp.Run(chromeCtx, actions...); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			if parentCtx.Err() != nil {
				return nil, parentCtx.Err()
			}
			logger.Warn("render timed out")
			return nil, fmt.Errorf("%w: %s", ErrRenderTimeout, rawURL)
		case errors.Is(err, exec.ErrNotFound):
			return nil, ErrRenderUnavailable
		default:
			logger.Warn("render failed", "error", err)
			return nil, fmt.Errorf("chromedp run: %w", err)
		}
	}

	if int64(len(html)) > r.opts.MaxBodySize {
		html = html[:r.opts.MaxBodySize]
	}
	if finalURL == "" {
		finalURL = rawURL
	}

	page := &model.Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Title:       title,
		Raw:         []byte(html),
		Rendered:    true,
	}
	page.ComputeHash()

	ParseLinks(finalURL, page.Raw).Apply(page)

	logger.Debug("render complete",
		"latency_ms", time.Since(start).Milliseconds(),
		"final_url", finalURL,
		"html_bytes", len(html),
		"links", len(page.Links),
	)
	return page, nil
}
