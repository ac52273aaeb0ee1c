package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-product-details/models"
)

const (
	cardWidth      = 30
	cardGap        = 1
	defaultCardCap = 128
)

type card struct {
	item     models.SimilarProduct
	rendered string
}

// SimilarItems renders the related-products section. Output depends only on
// the items and width passed in; rendered cards are cached by product id and
// reused while the item is unchanged.
type SimilarItems struct {
	cards *lru.Cache[models.ID, card]
}

// NewSimilarItems returns a renderer caching up to size cards.
func NewSimilarItems(size int) (*SimilarItems, error) {
	if size <= 0 {
		size = defaultCardCap
	}
	cache, err := lru.New[models.ID, card](size)
	if err != nil {
		return nil, err
	}
	return &SimilarItems{cards: cache}, nil
}

// Render draws the heading and the cards in server order, as many per row
// as fit in width.
func (s *SimilarItems) Render(items []models.SimilarProduct, width int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Similar Products"))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(MutedStyle.Render("No similar products."))
		b.WriteString("\n")
		return b.String()
	}

	perRow := width / (cardWidth + 2 + cardGap)
	if perRow < 1 {
		perRow = 1
	}

	gap := strings.Repeat(" ", cardGap)
	rows := make([]string, 0, (len(items)+perRow-1)/perRow)
	for start := 0; start < len(items); start += perRow {
		end := start + perRow
		if end > len(items) {
			end = len(items)
		}
		cells := make([]string, 0, 2*(end-start))
		for i, item := range items[start:end] {
			if i > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, s.card(item))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	return b.String()
}

// Cached reports how many cards are held.
func (s *SimilarItems) Cached() int {
	return s.cards.Len()
}

func (s *SimilarItems) card(item models.SimilarProduct) string {
	if c, ok := s.cards.Get(item.ID); ok && c.item == item {
		return c.rendered
	}
	rendered := renderCard(item)
	s.cards.Add(item.ID, card{item: item, rendered: rendered})
	return rendered
}

func renderCard(item models.SimilarProduct) string {
	var b strings.Builder
	b.WriteString(ValueStyle.Render(item.Title))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("by " + item.Brand))
	b.WriteString("\n")
	b.WriteString(PriceStyle.Render(formatPrice(item.Price) + "/-"))
	b.WriteString("  ")
	b.WriteString(RatingBadgeStyle.Render(formatRating(item.Rating) + " " + IconStar))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(item.ImageURL))
	return CardStyle.Width(cardWidth).Render(b.String())
}
