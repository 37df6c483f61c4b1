// Package fetcher performs the scraper's HTTP requests.
//
// Every request goes through the same pipeline:
//
//   - robots.txt check for the host (when enabled)
//   - wait for the request delay
//   - GET with the configured User-Agent and timeout
//   - status classification into typed errors from pkg/errors
//   - bounded retry of transport failures, 429 and 5xx responses
//
// Document parses the body with golang.org/x/net/html and wraps the tree in a
// goquery document for the extractor.
package fetcher
