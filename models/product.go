// Package models defines the wire and display shapes of catalog products.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque product identifier. The catalog emits ids as either JSON
// strings or JSON numbers; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("id is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// ProductRecord is one catalog record as it appears on the wire. Pointer
// fields distinguish an absent field from a zero value.
type ProductRecord struct {
	ID           *ID      `json:"id"`
	ImageURL     *string  `json:"image_url"`
	Availability *string  `json:"availability"`
	Brand        *string  `json:"brand"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Rating       *float64 `json:"rating"`
	Style        *string  `json:"style"`
	Title        *string  `json:"title"`
	TotalReviews *int     `json:"total_reviews"`
}

// ProductPayload is the body of a successful GET /products/{id}.
type ProductPayload struct {
	ProductRecord
	SimilarProducts *[]ProductRecord `json:"similar_products"`
}

// ProductDetail is the normalized primary product.
type ProductDetail struct {
	ID           ID      `csv:"id" json:"id"`
	ImageURL     string  `csv:"image_url" json:"imageUrl"`
	Availability string  `csv:"availability" json:"availability"`
	Brand        string  `csv:"brand" json:"brand"`
	Description  string  `csv:"description" json:"description"`
	Price        float64 `csv:"price" json:"price"`
	Rating       float64 `csv:"rating" json:"rating"`
	Style        string  `csv:"style" json:"style"`
	Title        string  `csv:"title" json:"title"`
	TotalReviews int     `csv:"total_reviews" json:"totalReviews"`
}

// IsZero reports whether p is the empty placeholder held before the first
// successful fetch.
func (p ProductDetail) IsZero() bool {
	return p == ProductDetail{}
}

// SimilarProduct is a normalized related product shown under the detail view.
type SimilarProduct struct {
	ID           ID      `csv:"id" json:"id"`
	ImageURL     string  `csv:"image_url" json:"imageUrl"`
	Availability string  `csv:"availability" json:"availability,omitempty"`
	Brand        string  `csv:"brand" json:"brand"`
	Price        float64 `csv:"price" json:"price"`
	Rating       float64 `csv:"rating" json:"rating"`
	Title        string  `csv:"title" json:"title"`
	TotalReviews int     `csv:"total_reviews" json:"totalReviews,omitempty"`
}

// Snapshot is the current ProductDetail together with its similar products.
type Snapshot struct {
	Product ProductDetail    `json:"product"`
	Similar []SimilarProduct `json:"similarProducts"`
}
