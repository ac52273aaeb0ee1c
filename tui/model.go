// Package tui renders the product detail component in the terminal.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aluiziolira/go-product-details/details"
	"github.com/aluiziolira/go-product-details/models"
)

// AddToCartFunc receives the "add to cart" action. The component itself keeps
// no cart state.
type AddToCartFunc func(id models.ID, quantity int)

// NavigateFunc receives navigation requests such as "continue shopping".
type NavigateFunc func(path string)

// fetchResultMsg carries a loaded result back to the event loop.
type fetchResultMsg struct {
	result details.Result
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithAddToCart installs the add-to-cart callback.
func WithAddToCart(fn AddToCartFunc) ModelOption {
	return func(m *Model) {
		m.onAddToCart = fn
	}
}

// WithNavigate installs the navigation callback.
func WithNavigate(fn NavigateFunc) ModelOption {
	return func(m *Model) {
		m.onNavigate = fn
	}
}

// WithSimilarItems replaces the similar-products renderer.
func WithSimilarItems(s *SimilarItems) ModelOption {
	return func(m *Model) {
		m.similar = s
	}
}

// Model is the Bubble Tea model for one product detail screen. All state is
// mutated from Update; the network call runs in a command and reports back
// with a message.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	productID string
	token     string

	fetcher  *details.Fetcher
	quantity *details.Quantity
	similar  *SimilarItems
	spinner  spinner.Model

	width  int
	height int

	onAddToCart AddToCartFunc
	onNavigate  NavigateFunc

	quitting bool
}

// NewModel builds a model for productID. Nothing is fetched until Init.
func NewModel(ctx context.Context, fetcher *details.Fetcher, productID, token string, opts ...ModelOption) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:       ctx,
		cancel:    cancel,
		productID: productID,
		token:     token,
		fetcher:   fetcher,
		quantity:  details.NewQuantity(),
		spinner:   NewSpinner(),
		width:     defaultWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.similar == nil {
		similar, err := NewSimilarItems(defaultCardCap)
		if err != nil {
			slog.Error("similar items cache", slog.Any("error", err))
		}
		m.similar = similar
	}
	return m
}

// Init triggers the one fetch per model instance.
func (m *Model) Init() tea.Cmd {
	return m.startFetch()
}

func (m *Model) startFetch() tea.Cmd {
	if err := m.fetcher.Begin(m.productID); err != nil {
		slog.Error("cannot start product fetch", slog.String("product_id", m.productID), slog.Any("error", err))
		return nil
	}
	fetcher, ctx, id, token := m.fetcher, m.ctx, m.productID, m.token
	load := func() tea.Msg {
		return fetchResultMsg{result: fetcher.Load(ctx, id, token)}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case fetchResultMsg:
		m.fetcher.Resolve(msg.result)
		return m, nil

	case spinner.TickMsg:
		if m.fetcher.Status().Terminal() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, m.quit()

	case "+", "=", "right":
		m.quantity.Increment()
		return m, nil

	case "-", "_", "left":
		m.quantity.Decrement()
		return m, nil

	case "r":
		return m, m.startFetch()

	case "a":
		if Route(m.fetcher.Status()) == ViewDetail && m.onAddToCart != nil {
			m.onAddToCart(m.fetcher.Product().ID, m.quantity.Count())
		}
		return m, nil

	case "enter", "c":
		if Route(m.fetcher.Status()) != ViewFailure {
			return m, nil
		}
		if m.onNavigate != nil {
			m.onNavigate(ListingPath)
		}
		return m, m.quit()
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.fetcher.Close()
	m.cancel()
	return tea.Quit
}

// View renders the screen for the current fetch status.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	view := Route(m.fetcher.Status())
	var body string
	switch view {
	case ViewNone:
		return ""
	case ViewLoading:
		body = RenderLoading(&m.spinner)
	case ViewDetail:
		body = RenderDetail(m.fetcher.Product(), m.quantity.Count(), m.renderSimilar(), m.width)
	case ViewFailure:
		body = RenderFailure(m.fetcher.FailureReason(), m.width)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(renderHelp(view))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderSimilar() string {
	if m.similar == nil {
		return ""
	}
	return m.similar.Render(m.fetcher.SimilarProducts(), m.width)
}

// Status returns the current fetch status.
func (m *Model) Status() details.FetchStatus {
	return m.fetcher.Status()
}

// Quantity returns the selected quantity.
func (m *Model) Quantity() int {
	return m.quantity.Count()
}
