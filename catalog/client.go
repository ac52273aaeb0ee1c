// Package catalog talks to the remote product catalog service.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-product-details/config"
	"github.com/gocolly/colly/v2"
)

const (
	ctxStart  = "start"
	ctxStatus = "status"
	ctxBody   = "body"
)

var (
	// ErrEmptyProductID is returned when a fetch is requested without an id.
	ErrEmptyProductID = errors.New("catalog: empty product id")
	// ErrInvalidProductID is returned for ids that are dot path segments.
	ErrInvalidProductID = errors.New("catalog: invalid product id")
)

// Client fetches product detail documents. It wraps a synchronous colly
// collector: each FetchProduct call blocks its goroutine until the response
// (or error) arrives.
type Client struct {
	cfg       *config.Config
	baseURL   *url.URL
	collector *colly.Collector
	transport *ctxTransport
	Metrics   *Metrics

	seq atomic.Uint64

	handlersOnce sync.Once
}

// NewClient builds a client configured from cfg. A nil metrics value gets a
// fresh registry.
func NewClient(cfg *config.Config, metrics *Metrics) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(cfg.Timeout)
	transport := newCtxTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	collector.WithTransport(transport)

	if metrics == nil {
		metrics = NewMetrics()
	}

	c := &Client{
		cfg:       cfg,
		baseURL:   parsed,
		collector: collector,
		transport: transport,
		Metrics:   metrics,
	}
	c.configureHandlers()
	return c, nil
}

// SetTransport replaces the HTTP transport, e.g. with a mock in tests.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.transport = newCtxTransport(rt)
	c.collector.WithTransport(c.transport)
}

// ProductURL returns the detail endpoint for productID. The id is escaped as
// a single path segment, so "/" and ".." cannot leave /products/.
func (c *Client) ProductURL(productID string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/products/" + productID
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/products/" + url.PathEscape(productID)
	return u.String()
}

func validateProductID(productID string) error {
	switch strings.TrimSpace(productID) {
	case "":
		return ErrEmptyProductID
	case ".", "..":
		return ErrInvalidProductID
	}
	return nil
}

// FetchProduct issues GET /products/{id} with the bearer token and returns
// the raw body of a 2xx response. Failures are classified into the typed
// errors of this package. The request is bounded by the configured timeout
// and by ctx.
func (c *Client) FetchProduct(ctx context.Context, productID, token string) ([]byte, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, classifyError(err, 0)
	}

	key := strconv.FormatUint(c.seq.Add(1), 10)
	c.transport.track(key, ctx)
	defer c.transport.untrack(key)

	target := c.ProductURL(productID)
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+token)
	hdr.Set("Accept", "application/json")
	hdr.Set(requestKeyHeader, key)

	reqCtx := colly.NewContext()
	reqCtx.Put(ctxStart, time.Now())

	reqErr := c.collector.Request(http.MethodGet, target, nil, reqCtx, hdr)

	status, _ := reqCtx.GetAny(ctxStatus).(int)
	body, _ := reqCtx.GetAny(ctxBody).([]byte)

	var classified error
	if err := ctx.Err(); err != nil {
		classified = classifyError(err, 0)
	} else {
		classified = classifyError(reqErr, status)
	}
	if classified != nil {
		reason := Reason(classified)
		c.Metrics.IncRequest("failure")
		c.Metrics.IncError(reason)
		slog.Warn("product request failed",
			slog.String("url", target),
			slog.Int("status", status),
			slog.String("reason", reason),
			slog.Any("error", reqErr),
		)
		return nil, classified
	}

	c.Metrics.IncRequest("success")
	slog.Debug("product request complete",
		slog.String("url", target),
		slog.Int("status", status),
		slog.Int("bytes", len(body)),
	)
	return body, nil
}

func (c *Client) configureHandlers() {
	c.handlersOnce.Do(func() {
		c.collector.OnResponse(func(r *colly.Response) {
			r.Ctx.Put(ctxStatus, r.StatusCode)
			r.Ctx.Put(ctxBody, r.Body)
			if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
				c.Metrics.ObserveDuration(time.Since(start))
			}
		})

		c.collector.OnError(func(r *colly.Response, err error) {
			if r == nil || r.Ctx == nil {
				return
			}
			if r.StatusCode != 0 {
				r.Ctx.Put(ctxStatus, r.StatusCode)
			}
			target := ""
			if r.Request != nil && r.Request.URL != nil {
				target = r.Request.URL.String()
			}
			slog.Debug("transport error", slog.String("url", target), slog.Any("error", err))
		})
	})
}
