package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	httputils "sitechat/sitechat/utils/http"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html/charset"
)

// Loader retrieves the raw HTML of a page.
type Loader interface {
	Load(ctx context.Context, targetURL string) (string, error)
}

// HTTPLoader fetches pages with a plain GET and decodes them to UTF-8.
type HTTPLoader struct {
	client *http.Client
}

func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPLoader{client: &http.Client{Timeout: timeout}}
}

func (l *HTTPLoader) Load(ctx context.Context, targetURL string) (string, error) {
	body, contentType, err := httputils.GetPage(ctx, l.client, targetURL)
	if err != nil {
		return "", err
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// BrowserLoader renders pages in headless Chromium, for sites that build their
// content with javascript.
type BrowserLoader struct {
	pw      *playwright.Playwright
	timeout time.Duration
}

// NewBrowserLoader initializes Playwright
func NewBrowserLoader(timeout time.Duration) (*BrowserLoader, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	return &BrowserLoader{pw: pw, timeout: timeout}, nil
}

// Close stops Playwright
func (l *BrowserLoader) Close() {
	if l.pw != nil {
		l.pw.Stop()
	}
}

func (l *BrowserLoader) Load(ctx context.Context, targetURL string) (string, error) {
	browser, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return "", err
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(httputils.DefaultUserAgent),
	})
	if err != nil {
		return "", err
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	// images and fonts never contribute text
	if err := page.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2}", func(route playwright.Route) {
		route.Abort()
	}); err != nil {
		return "", err
	}

	timeout := l.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if _, err := page.Goto(targetURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", err
	}
	return page.Content()
}
