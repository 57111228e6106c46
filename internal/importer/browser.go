package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeRenderer renders pages with headless Chrome
type ChromeRenderer struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Render loads url, waits for the body and returns the document HTML
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	ctx, cancel := createBrowserContext(ctx, r.Logger)
	defer cancel()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	var page string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Give client-side rendering a moment to fill in the title
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chrome: %w", err)
	}
	return page, nil
}

// createBrowserContext creates a new browser context with appropriate options
func createBrowserContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)

	sugar := logger.Sugar()
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		msg := fmt.Sprintf(format, v...)
		// chromedp lags behind the protocol and warns on every unknown event
		if strings.Contains(msg, "could not unmarshal event") {
			return
		}
		sugar.Debug(msg)
	}))

	return ctx, func() {
		cancelCtx()
		cancelAlloc()
	}
}
