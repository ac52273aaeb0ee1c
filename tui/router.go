package tui

import (
	"fmt"

	"github.com/aluiziolira/go-product-details/details"
)

// View identifies which screen is drawn for a fetch status.
type View int

const (
	// ViewNone draws nothing.
	ViewNone View = iota
	// ViewLoading draws the spinner.
	ViewLoading
	// ViewDetail draws the product, the quantity selector and similar products.
	ViewDetail
	// ViewFailure draws the failure message and the way back to the listing.
	ViewFailure
)

func (v View) String() string {
	switch v {
	case ViewNone:
		return "none"
	case ViewLoading:
		return "loading"
	case ViewDetail:
		return "detail"
	case ViewFailure:
		return "failure"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Route maps a fetch status to the view to draw. Every status must be
// handled here; an unknown status is a programming error and panics.
func Route(status details.FetchStatus) View {
	switch status {
	case details.StatusInitial:
		return ViewNone
	case details.StatusInProgress:
		return ViewLoading
	case details.StatusSuccess:
		return ViewDetail
	case details.StatusFailure:
		return ViewFailure
	}
	panic(fmt.Sprintf("tui: unhandled fetch status %v", status))
}
