// Package browser wraps a headless Chrome session for pages that only
// exist after client-side rendering.
//
// FencingTimeLive schedule, event, and pool pages build their tables from
// XHR calls after load, so their useful content never appears in the raw
// HTTP response. This package navigates with chromedp, waits for rendering
// to settle, and hands back the rendered DOM as a string for the scraper
// package to parse. It also supports polling a JavaScript global, which is
// how the pool scores page exposes its pool GUID list.
package browser
