package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Page is a single browser tab. It owns the browser it was launched with.
type Page struct {
	ctx      context.Context
	cleanups []func()
	once     sync.Once
	closeErr error
}

func newPage(ctx context.Context, cleanups ...func()) *Page {
	return &Page{ctx: ctx, cleanups: cleanups}
}

// Navigate loads url and returns once the DOMContentLoaded event fired. It does
// not wait for the load event or network idle: tracking and ad requests on the
// site routinely never settle.
func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := p.stepContext(ctx, timeout)
	defer cancel()

	domReady := make(chan struct{})
	var fired sync.Once
	chromedp.ListenTarget(navCtx, func(ev interface{}) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			fired.Do(func() { close(domReady) })
		}
	})

	err := chromedp.Run(navCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load error: %s", errorText)
		}
		return nil
	}))
	if err != nil {
		return err
	}

	select {
	case <-domReady:
		return nil
	case <-navCtx.Done():
		return navCtx.Err()
	}
}

// WaitReady waits until an element matching the CSS selector is in the DOM.
func (p *Page) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := p.stepContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// Content returns the current serialized document.
func (p *Page) Content(ctx context.Context, timeout time.Duration) (string, error) {
	contentCtx, cancel := p.stepContext(ctx, timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(contentCtx, chromedp.Evaluate(`document.documentElement.outerHTML`, &html)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts down the tab and the browser behind it. It is safe to call more
// than once.
func (p *Page) Close() error {
	p.once.Do(func() {
		if p.ctx != nil {
			p.closeErr = chromedp.Cancel(p.ctx)
		}
		for i := len(p.cleanups) - 1; i >= 0; i-- {
			p.cleanups[i]()
		}
	})
	return p.closeErr
}

// stepContext derives a per-step context from the tab that also ends when the
// caller's ctx does. chromedp needs the tab context to find its target.
func (p *Page) stepContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	stepCtx, cancel := context.WithTimeout(p.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return stepCtx, func() {
		stop()
		cancel()
	}
}
