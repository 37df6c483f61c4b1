package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/logger"
)

// robotsGate caches robots.txt per host. An unreachable robots.txt allows everything.
type robotsGate struct {
	httpClient *http.Client
	userAgent  string
	cache      map[string]*robotstxt.Group
	logger     logger.Logger
}

func newRobotsGate(hc *http.Client, userAgent string, log logger.Logger) *robotsGate {
	return &robotsGate{
		httpClient: hc,
		userAgent:  userAgent,
		cache:      make(map[string]*robotstxt.Group),
		logger:     log,
	}
}

func (g *robotsGate) check(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeUnknown, Message: "invalid URL", URL: rawURL, Err: err}
	}

	host := u.Scheme + "://" + u.Host
	group, ok := g.cache[host]
	if !ok {
		group = g.load(ctx, host)
		g.cache[host] = group
	}

	if group != nil && !group.Test(u.RequestURI()) {
		return &errs.Error{
			Type:    errs.ErrorTypeForbidden,
			Message: "disallowed by robots.txt",
			URL:     rawURL,
		}
	}
	return nil
}

func (g *robotsGate) load(ctx context.Context, host string) *robotstxt.Group {
	robotsURL := host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.WarnWithFields("robots.txt unreachable, allowing all", map[string]interface{}{
			"url":   robotsURL,
			"error": err.Error(),
		})
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.WarnWithFields("robots.txt unparseable, allowing all", map[string]interface{}{
			"url":   robotsURL,
			"error": fmt.Sprint(err),
		})
		return nil
	}
	return robots.FindGroup(g.userAgent)
}
