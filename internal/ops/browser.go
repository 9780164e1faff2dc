package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// Browser provides the browser.* operations against a single headless
// Chrome session. The session is started lazily on first use and stays
// open until browser.close runs or Shutdown is called.
type Browser struct {
	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc

	ScreenshotDir string
}

func NewBrowser(screenshotDir string) *Browser {
	if screenshotDir == "" {
		screenshotDir = "screenshots"
	}
	return &Browser{ScreenshotDir: screenshotDir}
}

func (b *Browser) Register(r *Registry) {
	r.Register(Func{"browser.navigate", "Navigate the browser to a URL.", b.navigate})
	r.Register(Func{"browser.content", "Return the current page's HTML content.", b.content})
	r.Register(Func{"browser.screenshot", "Capture the current page to a PNG file.", b.screenshot})
	r.Register(Func{"browser.close", "Close the browser session.", b.close})
}

func (b *Browser) init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		select {
		case <-b.browserCtx.Done():
			b.cleanup()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

func (b *Browser) cleanup() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

// Shutdown closes the session if one is open. Safe to call at process
// exit regardless of whether the browser was ever started.
func (b *Browser) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()
}

func (b *Browser) actionCtx() (context.Context, context.CancelFunc, error) {
	if err := b.init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	ctx, cancel := context.WithTimeout(b.browserCtx, 60*time.Second)
	return ctx, cancel, nil
}

func (b *Browser) navigate(ctx context.Context, params map[string]any) (any, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	actionCtx, cancel, err := b.actionCtx()
	if err != nil {
		return nil, err
	}
	defer cancel()
	if err := chromedp.Run(actionCtx, chromedp.Navigate(url)); err != nil {
		return nil, fmt.Errorf("navigate failed: %w", err)
	}
	return fmt.Sprintf("Successfully navigated to %s", url), nil
}

func (b *Browser) content(ctx context.Context, params map[string]any) (any, error) {
	actionCtx, cancel, err := b.actionCtx()
	if err != nil {
		return nil, err
	}
	defer cancel()

	var html string
	err = chromedp.Run(actionCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("content fetch failed: %w", err)
	}
	if len(html) > 50000 {
		html = html[:50000] + "\n... (truncated)"
	}
	return html, nil
}

func (b *Browser) screenshot(ctx context.Context, params map[string]any) (any, error) {
	actionCtx, cancel, err := b.actionCtx()
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(actionCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	os.MkdirAll(b.ScreenshotDir, 0755)
	filename := fmt.Sprintf("screenshot_%d.png", time.Now().Unix())
	path := filepath.Join(b.ScreenshotDir, filename)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return nil, fmt.Errorf("failed to save screenshot: %w", err)
	}
	absPath, _ := filepath.Abs(path)
	return fmt.Sprintf("Screenshot saved to %s", absPath), nil
}

func (b *Browser) close(ctx context.Context, params map[string]any) (any, error) {
	b.Shutdown()
	return "Successfully closed the browser.", nil
}
