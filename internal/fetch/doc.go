// Package fetch provides the shared HTTP client used by all source parsers.
//
// The client sets a browser-like User-Agent, enforces a per-request timeout,
// retries transient failures with bounded exponential backoff, and decodes
// legacy windows-1251 responses to UTF-8 before handing the body to goquery.
package fetch
