package details

// Quantity is the item count chosen on the detail view. It never drops below
// one and has no upper bound. The zero value is ready to use with a count of 1.
type Quantity struct {
	// extra is count-1, so the zero value holds the floor.
	extra int
}

// NewQuantity returns a selector at count 1.
func NewQuantity() *Quantity {
	return &Quantity{}
}

// Count returns the current count.
func (q *Quantity) Count() int {
	return q.extra + 1
}

// Increment adds one.
func (q *Quantity) Increment() {
	q.extra++
}

// Decrement removes one unless the count is already 1.
func (q *Quantity) Decrement() {
	if q.extra > 0 {
		q.extra--
	}
}
