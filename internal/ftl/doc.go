// Package ftl knows the shape of FencingTimeLive URLs and speaks to the
// site's fragment endpoints over plain HTTP.
//
// Tournament, event, pool, and tableau pages all encode their identifiers
// as the last path segment of their URLs. This package validates and builds
// those URLs, and its Client fetches the server-rendered fragments (pool
// detail tables, tableau trees, bracket tables) that need no browser.
package ftl
