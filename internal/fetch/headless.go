package fetch

import (
	"context"
	"net/url"

	"github.com/chromedp/chromedp"
)

// headless renders the page in a headless browser before extraction, for
// pages the plain HTTP path cannot read.
func (f *Fetcher) headless(ctx context.Context, raw string, parsed *url.URL) (Result, error) {
	renderCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("daybrief/1.0 (+research digest)"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(renderCtx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(raw),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return Result{}, err
	}
	return f.extract(raw, html, parsed)
}
