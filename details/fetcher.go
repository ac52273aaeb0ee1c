package details

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/go-product-details/catalog"
	"github.com/aluiziolira/go-product-details/models"
	"github.com/aluiziolira/go-product-details/parser"
)

var (
	// ErrNoPendingFetch is returned when a result arrives without a matching Begin.
	ErrNoPendingFetch = errors.New("details: no pending fetch")
	// ErrClosed is returned for results that arrive after Close.
	ErrClosed = errors.New("details: fetcher closed")
)

// Loader retrieves the raw product document for an id.
type Loader interface {
	FetchProduct(ctx context.Context, productID, token string) ([]byte, error)
}

// Result is the outcome of the network half of a fetch. It carries no
// reference to fetcher state and may be produced on any goroutine.
type Result struct {
	ProductID string
	Snapshot  models.Snapshot
	Err       error
}

// Outcome describes the state after a result was resolved.
type Outcome struct {
	Status FetchStatus
	// Reason is the failure label (see catalog.Reason); empty on success.
	Reason string
	Err    error
	// Applied is false when the result was dropped and no state changed.
	Applied bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMetrics records transitions on m.
func WithMetrics(m *catalog.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithTransitionHook calls fn after every status change.
func WithTransitionHook(fn func(FetchStatus)) Option {
	return func(f *Fetcher) {
		f.onTransition = fn
	}
}

// Fetcher owns the product snapshot and drives the fetch status machine:
//
//	Initial -> InProgress      Begin
//	InProgress -> Success      Resolve with a valid payload
//	InProgress -> Failure      Resolve with any error
//
// Begin always moves to InProgress, including from a terminal state or while
// another fetch is pending. Results are applied in the order they are
// resolved. A Fetcher is not safe for concurrent use: Begin, Resolve and the
// accessors must run on the owner's goroutine. Load may run anywhere.
type Fetcher struct {
	loader       Loader
	metrics      *catalog.Metrics
	onTransition func(FetchStatus)

	status   FetchStatus
	snapshot models.Snapshot
	reason   string
	err      error
	pending  int
	closed   bool
}

// NewFetcher returns a fetcher in StatusInitial holding the empty placeholder.
func NewFetcher(loader Loader, opts ...Option) *Fetcher {
	f := &Fetcher{
		loader:   loader,
		status:   StatusInitial,
		snapshot: models.Snapshot{Similar: []models.SimilarProduct{}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin marks a fetch for productID as started.
func (f *Fetcher) Begin(productID string) error {
	if f.closed {
		return ErrClosed
	}
	if strings.TrimSpace(productID) == "" {
		return catalog.ErrEmptyProductID
	}
	f.pending++
	f.transition(StatusInProgress)
	return nil
}

// Load performs the request and normalization for productID.
func (f *Fetcher) Load(ctx context.Context, productID, token string) Result {
	body, err := f.loader.FetchProduct(ctx, productID, token)
	if err != nil {
		return Result{ProductID: productID, Err: fmt.Errorf("fetch product %s: %w", productID, err)}
	}
	payload, err := parser.Decode(body)
	if err != nil {
		return Result{ProductID: productID, Err: fmt.Errorf("decode product %s: %w", productID, err)}
	}
	return Result{ProductID: productID, Snapshot: parser.NormalizePayload(payload)}
}

// Resolve applies a loaded result. On success the stored snapshot is
// replaced; on failure it is left untouched.
func (f *Fetcher) Resolve(r Result) Outcome {
	if f.closed {
		slog.Debug("dropping product result after close", slog.String("product_id", r.ProductID))
		return Outcome{Status: f.status, Err: ErrClosed}
	}
	if f.pending == 0 {
		return Outcome{Status: f.status, Err: ErrNoPendingFetch}
	}
	f.pending--

	if r.Err != nil {
		f.reason = catalog.Reason(r.Err)
		f.err = r.Err
		if f.reason == catalog.ReasonMalformedPayload {
			f.metrics.IncError(f.reason)
		}
		f.transition(StatusFailure)
		slog.Warn("product fetch failed",
			slog.String("product_id", r.ProductID),
			slog.String("reason", f.reason),
			slog.Any("error", r.Err),
		)
		return Outcome{Status: f.status, Reason: f.reason, Err: r.Err, Applied: true}
	}

	similar := r.Snapshot.Similar
	if similar == nil {
		similar = []models.SimilarProduct{}
	}
	f.snapshot = models.Snapshot{Product: r.Snapshot.Product, Similar: similar}
	f.reason = ""
	f.err = nil
	f.metrics.AddSimilarItems(len(similar))
	f.transition(StatusSuccess)
	return Outcome{Status: f.status, Applied: true}
}

// FetchDetail runs Begin, Load and Resolve on the calling goroutine.
func (f *Fetcher) FetchDetail(ctx context.Context, productID, token string) Outcome {
	if err := f.Begin(productID); err != nil {
		return Outcome{Status: f.status, Err: err}
	}
	return f.Resolve(f.Load(ctx, productID, token))
}

// Close marks the owner as torn down. Later results are dropped.
func (f *Fetcher) Close() {
	f.closed = true
}

// Status returns the current fetch status.
func (f *Fetcher) Status() FetchStatus {
	return f.status
}

// Product returns the current product, or the empty placeholder.
func (f *Fetcher) Product() models.ProductDetail {
	return f.snapshot.Product
}

// SimilarProducts returns a copy of the current similar products in server order.
func (f *Fetcher) SimilarProducts() []models.SimilarProduct {
	out := make([]models.SimilarProduct, len(f.snapshot.Similar))
	copy(out, f.snapshot.Similar)
	return out
}

// Snapshot returns the current product together with its similar products.
func (f *Fetcher) Snapshot() models.Snapshot {
	return models.Snapshot{Product: f.snapshot.Product, Similar: f.SimilarProducts()}
}

// FailureReason returns the reason label of the last failure, if the
// current status is StatusFailure.
func (f *Fetcher) FailureReason() string {
	if f.status != StatusFailure {
		return ""
	}
	return f.reason
}

// Err returns the error of the last failure, if the current status is StatusFailure.
func (f *Fetcher) Err() error {
	if f.status != StatusFailure {
		return nil
	}
	return f.err
}

func (f *Fetcher) transition(to FetchStatus) {
	from := f.status
	f.status = to
	if f.metrics != nil {
		f.metrics.IncTransition(to.String())
	}
	slog.Debug("fetch status transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
	if f.onTransition != nil {
		f.onTransition(to)
	}
}
