package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	// UserAgent mimics a desktop browser; several of the scraped sites
	// reject obvious bot agents outright.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	// DefaultTimeout bounds a single request so one unresponsive source
	// cannot stall a whole pass.
	DefaultTimeout = 30 * time.Second

	maxRetries = 3
)

// Client is a thin HTTP wrapper shared by all source parsers.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// New creates a Client with the default timeout and headers.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
		headers: map[string]string{
			"User-Agent":      UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.8",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the decoded UTF-8 body. Transient failures
// (network errors, 5xx, 429) are retried with exponential backoff; other
// non-200 statuses fail immediately.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var body string

	op := func() error {
		b, err := c.getOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return "", err
	}
	return body, nil
}

// GetDocument fetches url and parses the body into a goquery document.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) getOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetching %s: unexpected status code %d", url, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", url, err)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type"))
}

// decodeBody converts windows-1251 responses to UTF-8. Everything else is
// assumed to already be UTF-8.
func decodeBody(raw []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "windows-1251") || strings.Contains(ct, "cp1251") {
		decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), raw)
		if err != nil {
			return "", fmt.Errorf("decoding windows-1251 body: %w", err)
		}
		return string(decoded), nil
	}
	return string(raw), nil
}
