package catalog

import (
	"context"
	"net/http"
	"sync"
)

// requestKeyHeader tags an outgoing request with the FetchProduct call that
// issued it. It is stripped before the request leaves the process.
const requestKeyHeader = "X-Catalog-Request-Key"

// ctxTransport ties each request to the context of the FetchProduct call
// that issued it. colly builds its own http.Request without a caller
// context, so cancellation is grafted on here.
type ctxTransport struct {
	base     http.RoundTripper
	inflight sync.Map // key -> *trackedCall
}

type trackedCall struct {
	ctx context.Context

	mu      sync.Mutex
	cleanup []func()
}

func newCtxTransport(base http.RoundTripper) *ctxTransport {
	return &ctxTransport{base: base}
}

func (t *ctxTransport) track(key string, ctx context.Context) {
	t.inflight.Store(key, &trackedCall{ctx: ctx})
}

// untrack releases the cancellation hooks of a finished call. colly has read
// the whole body by the time Request returns.
func (t *ctxTransport) untrack(key string) {
	v, ok := t.inflight.LoadAndDelete(key)
	if !ok {
		return
	}
	call := v.(*trackedCall)
	call.mu.Lock()
	defer call.mu.Unlock()
	for _, fn := range call.cleanup {
		fn()
	}
	call.cleanup = nil
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Header.Get(requestKeyHeader)
	if key == "" {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	if v, ok := t.inflight.Load(key); ok {
		call := v.(*trackedCall)
		merged, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(call.ctx, cancel)
		call.mu.Lock()
		call.cleanup = append(call.cleanup, func() {
			stop()
			cancel()
		})
		call.mu.Unlock()
		ctx = merged
	}

	out := req.Clone(ctx)
	out.Header.Del(requestKeyHeader)
	return t.base.RoundTrip(out)
}
