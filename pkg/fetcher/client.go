package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"tuniscraper/pkg/config"
	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/ratelimit"
	"tuniscraper/pkg/retry"
)

// Client issues GET requests against the target site. Requests are spaced by
// the configured delay, optionally checked against robots.txt, and transient
// failures are retried a bounded number of times.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	robots     *robotsGate
	retry      retry.Config
	logger     logger.Logger
}

// NewClient creates a new client from the fetcher configuration
func NewClient(cfg config.FetcherConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"User-Agent": cfg.UserAgent,
			"Accept":     "*/*",
		},
		limiter: ratelimit.NewDelay(cfg.RequestDelay),
		retry: retry.Config{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     &retry.ConstantBackoff{Delay: cfg.RetryDelay},
			Logger:      log,
		},
		logger: log,
	}
	if cfg.RespectRobots {
		c.robots = newRobotsGate(c.httpClient, cfg.UserAgent, log)
	}
	return c
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
	if c.robots != nil {
		c.robots.httpClient = hc
	}
}

// doRequest performs one GET and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: "failed to create request",
			URL:     url,
			Err:     err,
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.Network(url, err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	if statusErr := errs.FromStatus(url, resp.StatusCode); statusErr != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network(url, fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

// Get fetches url and returns the response body
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.robots != nil {
		if err := c.robots.check(ctx, url); err != nil {
			return nil, err
		}
	}

	var body []byte
	err := retry.Do(ctx, func() error {
		var reqErr error
		body, reqErr = c.doRequest(ctx, url)
		return reqErr
	}, c.retry)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Document fetches url and parses it as HTML
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "invalid HTML",
			URL:     url,
			Err:     err,
		}
	}
	return goquery.NewDocumentFromNode(root), nil
}

// DownloadImage fetches the image at url
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	c.logger.DebugWithFields("downloading image", map[string]interface{}{
		"url": url,
	})

	data, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})
	return data, nil
}
