// Package httputil fetches remote badge assets.
//
// Backgrounds and visitor photos are often hosted on a CDN or an upload
// bucket. [Client] wraps net/http with:
//
//   - [Retry]: exponential backoff for transient failures (network errors,
//     5xx and 429 responses)
//   - a response size limit, so a misconfigured URL cannot exhaust memory
//   - observability HTTP hooks around every request
//
// Usage:
//
//	c := httputil.NewClient(httputil.WithTimeout(10 * time.Second))
//	data, err := c.Get(ctx, "https://cdn.example.com/bg.png")
package httputil
