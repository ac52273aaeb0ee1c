package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/aluiziolira/go-product-details/catalog"
	"github.com/aluiziolira/go-product-details/models"
)

// ListingPath is where "Continue Shopping" leads.
const ListingPath = "/products"

const (
	defaultWidth = 80
	minBoxWidth  = 40
)

// NewSpinner returns the loading spinner.
func NewSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
}

var spinnerStyle = MutedStyle.Foreground(ColorPrimary)

// RenderLoading draws the loading indicator. A nil spinner renders plain text.
func RenderLoading(sp *spinner.Model) string {
	if sp == nil {
		return "Loading product..."
	}
	return fmt.Sprintf("\n %s Loading product...\n\n", sp.View())
}

// RenderDetail draws the product, the quantity selector and the similar
// products section.
func RenderDetail(product models.ProductDetail, quantity int, similar string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	boxWidth := width - 2
	if boxWidth < minBoxWidth {
		boxWidth = minBoxWidth
	}

	var content strings.Builder
	content.WriteString(TitleStyle.Render(product.Title))
	content.WriteString("\n")
	content.WriteString(PriceStyle.Render(formatPrice(product.Price)))
	content.WriteString("\n\n")

	content.WriteString(RatingBadgeStyle.Render(formatRating(product.Rating) + " " + IconStar))
	content.WriteString(" ")
	content.WriteString(LabelStyle.Render(formatCount(product.TotalReviews) + " Reviews"))
	content.WriteString("\n\n")

	if product.Description != "" {
		content.WriteString(product.Description)
		content.WriteString("\n\n")
	}

	content.WriteString(LabelStyle.Render("Available: "))
	content.WriteString(ValueStyle.Render(product.Availability))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("Brand: "))
	content.WriteString(ValueStyle.Render(product.Brand))
	content.WriteString("\n")
	if product.ImageURL != "" {
		content.WriteString(LabelStyle.Render("Image: "))
		content.WriteString(MutedStyle.Render(product.ImageURL))
		content.WriteString("\n")
	}
	content.WriteString(RuleStyle.Render(strings.Repeat("─", boxWidth-4)))
	content.WriteString("\n")

	content.WriteString(RenderQuantity(quantity))
	content.WriteString("\n\n")
	content.WriteString(ButtonStyle.Render("Add to Cart"))

	var b strings.Builder
	b.WriteString(BoxStyle.Width(boxWidth).Render(content.String()))
	b.WriteString("\n\n")
	b.WriteString(similar)
	return b.String()
}

// RenderQuantity draws the quantity selector.
func RenderQuantity(quantity int) string {
	return fmt.Sprintf("%s %s %s", LabelStyle.Render(IconMinus), ValueStyle.Render(fmt.Sprint(quantity)), LabelStyle.Render(IconPlus))
}

// RenderFailure draws the failure view for a reason label.
func RenderFailure(reason string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	boxWidth := width - 2
	if boxWidth < minBoxWidth {
		boxWidth = minBoxWidth
	}

	var content strings.Builder
	if reason == catalog.ReasonNotFound {
		content.WriteString(ErrorStyle.Render("Product Not Found"))
		content.WriteString("\n\n")
	} else {
		content.WriteString(ErrorStyle.Render("Something Went Wrong"))
		content.WriteString("\n")
		content.WriteString(LabelStyle.Render("Reason: "))
		content.WriteString(ValueStyle.Render(reason))
		content.WriteString("\n\n")
	}
	content.WriteString(ButtonStyle.Render("Continue Shopping"))
	content.WriteString(" ")
	content.WriteString(MutedStyle.Render(IconArrow + " " + ListingPath))
	return BoxStyle.Width(boxWidth).Render(content.String())
}

func renderHelp(view View) string {
	var keys []string
	switch view {
	case ViewDetail:
		keys = []string{"+/- quantity", "a add to cart", "r reload", "q quit"}
	case ViewFailure:
		keys = []string{"enter continue shopping", "r retry", "q quit"}
	default:
		keys = []string{"q quit"}
	}
	return MutedStyle.Render(strings.Join(keys, " • "))
}
