// Package crawler fetches the page under scan and turns it into a
// model.Page snapshot.
//
// # Components
//
//   - Fetcher: downloads one page, optionally honouring robots.txt
//   - Parser: extracts script, iframe, img and anchor elements with goquery
//     and resolves their URLs against the page URL
//   - FindPolicyLink: picks the page's privacy policy link and applies
//     per-site URL overrides
//
// # Usage
//
//	f := crawler.NewFetcher(httpClient, crawler.WithRespectRobots(true))
//	page, err := f.Fetch(ctx, "https://example.com")
//	policyURL, err := crawler.FindPolicyLink(page, crawler.DefaultOverrides())
//
// Only the requested page is fetched. Links are recorded but never
// followed, and cookie values set by the page are discarded.
package crawler
