// Package details holds the product detail state: the fetch status machine,
// the current product snapshot, and the quantity selector.
package details

import "fmt"

// FetchStatus is the lifecycle state of a product detail fetch.
type FetchStatus int

const (
	// StatusInitial means no fetch has been triggered yet.
	StatusInitial FetchStatus = iota
	// StatusInProgress means a fetch is pending.
	StatusInProgress
	// StatusSuccess means the last resolved fetch stored a snapshot.
	StatusSuccess
	// StatusFailure means the last resolved fetch failed.
	StatusFailure
)

// Statuses lists every FetchStatus in declaration order.
var Statuses = []FetchStatus{StatusInitial, StatusInProgress, StatusSuccess, StatusFailure}

func (s FetchStatus) String() string {
	switch s {
	case StatusInitial:
		return "INITIAL"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailure:
		return "FAILURE"
	default:
		return fmt.Sprintf("FetchStatus(%d)", int(s))
	}
}

// Terminal reports whether s ends a fetch.
func (s FetchStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}
