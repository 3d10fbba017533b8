package browser

import (
	"context"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript runs before any page script on every new document.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined,
});
Object.defineProperty(navigator, 'plugins', {
	get: () => [1, 2, 3, 4, 5],
});
Object.defineProperty(navigator, 'languages', {
	get: () => ['en-US', 'en'],
});
`

// requestHeaders returns the extra headers sent with every request
func requestHeaders(acceptLanguage string) network.Headers {
	return network.Headers{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           acceptLanguage,
		"Accept-Encoding":           "gzip, deflate",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// stealthTasks masks the automation fingerprint of the current tab
func stealthTasks(userAgent, acceptLanguage string) chromedp.Tasks {
	return chromedp.Tasks{
		emulation.SetAutomationOverride(false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		emulation.SetUserAgentOverride(userAgent).WithAcceptLanguage(acceptLanguage),
		network.Enable(),
		network.SetExtraHTTPHeaders(requestHeaders(acceptLanguage)),
	}
}
