package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-product-details/config"
	"github.com/aluiziolira/go-product-details/parser"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const productBody = `{"id":"1","title":"Nike Shoe","price":150,"rating":4,"image_url":"u1","brand":"Nike",
"availability":"IN STOCK","description":"d","style":"casual","total_reviews":10,
"similar_products":[{"id":"2","title":"Puma Shoe","price":120,"image_url":"u2","brand":"Puma","rating":3}]}`

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://catalog.test"
	cfg.Timeout = time.Second

	c, err := NewClient(cfg, NewMetrics())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := httpmock.NewMockTransport()
	c.SetTransport(transport)
	return c, transport
}

func jsonResponder(status int, body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return httpmock.ResponderFromResponse(resp)
}

func TestFetchProductSendsBearerToken(t *testing.T) {
	c, transport := newTestClient(t)

	var gotAuth, gotAccept string
	transport.RegisterResponder("GET", "http://catalog.test/products/1",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotAccept = req.Header.Get("Accept")
			return jsonResponder(http.StatusOK, productBody)(req)
		})

	body, err := c.FetchProduct(context.Background(), "1", "tok")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept = %q", gotAccept)
	}
	if _, err := parser.Decode(body); err != nil {
		t.Fatalf("body should decode: %v", err)
	}
	if got := testutil.ToFloat64(c.Metrics.RequestsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("success requests = %v, want 1", got)
	}
}

func TestFetchProductRepeatedRequests(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", "http://catalog.test/products/1", jsonResponder(http.StatusOK, productBody))

	for i := 0; i < 3; i++ {
		if _, err := c.FetchProduct(context.Background(), "1", "tok"); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if got := transport.GetTotalCallCount(); got != 3 {
		t.Fatalf("calls = %d, want 3 (revisits must not be suppressed)", got)
	}
}

func TestFetchProductStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusNotFound, expected: ReasonNotFound},
		{status: http.StatusUnauthorized, expected: ReasonUnauthorized},
		{status: http.StatusForbidden, expected: ReasonUnauthorized},
		{status: http.StatusTooManyRequests, expected: ReasonRateLimited},
		{status: http.StatusInternalServerError, expected: ReasonUnexpectedStatus},
		{status: http.StatusBadGateway, expected: ReasonUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			c, transport := newTestClient(t)
			transport.RegisterResponder("GET", "http://catalog.test/products/999",
				jsonResponder(tt.status, `{"status_code":`+fmt.Sprint(tt.status)+`}`))

			body, err := c.FetchProduct(context.Background(), "999", "tok")
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if body != nil {
				t.Fatalf("body should be nil on failure")
			}
			if got := Reason(err); got != tt.expected {
				t.Fatalf("Reason() = %q, want %q (err=%v)", got, tt.expected, err)
			}
			if got := testutil.ToFloat64(c.Metrics.ErrorsTotal.WithLabelValues(tt.expected)); got != 1 {
				t.Fatalf("errors{%s} = %v, want 1", tt.expected, got)
			}
		})
	}
}

func TestFetchProductAcceptsAny2xx(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", "http://catalog.test/products/1", jsonResponder(http.StatusNonAuthoritativeInfo, productBody))

	if _, err := c.FetchProduct(context.Background(), "1", "tok"); err != nil {
		t.Fatalf("203 should be treated as success, got %v", err)
	}
}

func TestFetchProductTransportError(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", "http://catalog.test/products/1",
		httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	_, err := c.FetchProduct(context.Background(), "1", "tok")
	if got := Reason(err); got != ReasonConnection {
		t.Fatalf("Reason() = %q, want %q (err=%v)", got, ReasonConnection, err)
	}
}

func TestFetchProductEmptyID(t *testing.T) {
	c, transport := newTestClient(t)

	if _, err := c.FetchProduct(context.Background(), "  ", "tok"); !errors.Is(err, ErrEmptyProductID) {
		t.Fatalf("err = %v, want ErrEmptyProductID", err)
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("no request should be sent, got %d", got)
	}
}

func TestFetchProductCanceledContext(t *testing.T) {
	c, transport := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchProduct(ctx, "1", "tok")
	if got := Reason(err); got != ReasonCanceled {
		t.Fatalf("Reason() = %q, want %q (err %v)", got, ReasonCanceled, err)
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("no request should be sent, got %d", got)
	}
}

func TestFetchProductCancelInFlight(t *testing.T) {
	c, transport := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport.RegisterResponder(http.MethodGet, "http://catalog.test/products/1",
		func(req *http.Request) (*http.Response, error) {
			cancel()
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	start := time.Now()
	body, err := c.FetchProduct(ctx, "1", "tok")
	if body != nil {
		t.Fatalf("expected no body, got %q", body)
	}
	if got := Reason(err); got != ReasonCanceled {
		t.Fatalf("Reason() = %q, want %q (err %v)", got, ReasonCanceled, err)
	}
	if elapsed := time.Since(start); elapsed >= 500*time.Millisecond {
		t.Fatalf("request was not interrupted, took %v", elapsed)
	}
}

func TestFetchProductCancelAfterResponse(t *testing.T) {
	c, transport := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport.RegisterResponder(http.MethodGet, "http://catalog.test/products/1",
		func(req *http.Request) (*http.Response, error) {
			cancel()
			return httpmock.NewStringResponse(http.StatusOK, "{}"), nil
		})

	if _, err := c.FetchProduct(ctx, "1", "tok"); Reason(err) != ReasonCanceled {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestProductURLEscapesID(t *testing.T) {
	c, _ := newTestClient(t)
	tests := []struct {
		id   string
		want string
	}{
		{id: "16", want: "http://catalog.test/products/16"},
		{id: "a b", want: "http://catalog.test/products/a%20b"},
		{id: "a/b", want: "http://catalog.test/products/a%2Fb"},
		{id: "../admin", want: "http://catalog.test/products/..%2Fadmin"},
	}
	for _, tt := range tests {
		if got := c.ProductURL(tt.id); got != tt.want {
			t.Errorf("ProductURL(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestProductURLKeepsBasePath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://catalog.test/api/"
	c, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got, want := c.ProductURL("7"), "http://catalog.test/api/products/7"; got != want {
		t.Fatalf("ProductURL() = %q, want %q", got, want)
	}
}

func TestFetchProductStaysUnderProducts(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder(http.MethodGet, "http://catalog.test/admin", jsonResponder(http.StatusOK, "SECRET"))
	transport.RegisterNoResponder(func(req *http.Request) (*http.Response, error) {
		if !strings.HasPrefix(req.URL.EscapedPath(), "/products/") {
			t.Errorf("request escaped /products/: %s", req.URL.EscapedPath())
		}
		if req.Header.Get(requestKeyHeader) != "" {
			t.Errorf("internal header leaked to the server")
		}
		return httpmock.NewStringResponse(http.StatusNotFound, "{}"), nil
	})

	body, err := c.FetchProduct(context.Background(), "../admin", "tok")
	if string(body) == "SECRET" {
		t.Fatalf("id escaped the products path")
	}
	if got := Reason(err); got != ReasonNotFound {
		t.Fatalf("Reason() = %q, want %q", got, ReasonNotFound)
	}
	if got := transport.GetCallCountInfo()["GET http://catalog.test/admin"]; got != 0 {
		t.Fatalf("admin endpoint called %d times", got)
	}
}

func TestFetchProductRejectsDotIDs(t *testing.T) {
	c, transport := newTestClient(t)
	for _, id := range []string{".", ".."} {
		if _, err := c.FetchProduct(context.Background(), id, "tok"); !errors.Is(err, ErrInvalidProductID) {
			t.Fatalf("FetchProduct(%q) error = %v, want ErrInvalidProductID", id, err)
		}
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("no request should be sent, got %d", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "success", err: nil, statusCode: http.StatusOK, expected: ""},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: ReasonTimeout},
		{name: "canceled", err: fmt.Errorf("get: %w", context.Canceled), statusCode: 0, expected: ReasonCanceled},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: ReasonTimeout},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: ReasonConnection},
		{name: "unauthorized", err: nil, statusCode: http.StatusUnauthorized, expected: ReasonUnauthorized},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: ReasonNotFound},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: ReasonRateLimited},
		{name: "server error", err: nil, statusCode: http.StatusServiceUnavailable, expected: ReasonUnexpectedStatus},
		{name: "no response", err: nil, statusCode: 0, expected: ReasonConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestReasonMalformedPayload(t *testing.T) {
	err := fmt.Errorf("decode: %w", &parser.MalformedPayloadError{Field: "price", Index: -1})
	if got := Reason(err); got != ReasonMalformedPayload {
		t.Fatalf("Reason() = %q, want %q", got, ReasonMalformedPayload)
	}
	if got := Reason(errors.New("boom")); got != ReasonOther {
		t.Fatalf("Reason() = %q, want %q", got, ReasonOther)
	}
}
