package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-product-details/models"
)

// primaryIndex marks a MalformedPayloadError raised by the primary record.
const primaryIndex = -1

// MalformedPayloadError reports a catalog response whose shape does not match
// the product contract.
type MalformedPayloadError struct {
	// Field is the wire name of the offending field, when known.
	Field string
	// Index is the position in similar_products, or -1 for the primary record.
	Index int
	Err   error
}

func (e *MalformedPayloadError) Error() string {
	where := "product"
	if e.Index >= 0 {
		where = fmt.Sprintf("similar_products[%d]", e.Index)
	}
	if e.Field != "" {
		where += "." + e.Field
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", where, e.Err)
	}
	return "malformed payload: " + where
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

var errMissing = errors.New("field missing")

// Decode parses a response body into a payload and validates its shape. The
// primary record and each similar record are decoded separately so a type
// error names the record it came from.
func Decode(body []byte) (*models.ProductPayload, error) {
	var payload models.ProductPayload
	if err := json.Unmarshal(body, &payload.ProductRecord); err != nil {
		return nil, decodeError(err, primaryIndex)
	}

	var list struct {
		SimilarProducts *[]json.RawMessage `json:"similar_products"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, decodeError(err, primaryIndex)
	}
	if list.SimilarProducts != nil {
		similar := make([]models.ProductRecord, len(*list.SimilarProducts))
		for i, raw := range *list.SimilarProducts {
			if err := json.Unmarshal(raw, &similar[i]); err != nil {
				return nil, decodeError(err, i)
			}
		}
		payload.SimilarProducts = &similar
	}

	if err := ValidatePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeError(err error, index int) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &MalformedPayloadError{Field: wireField(typeErr.Field), Index: index, Err: err}
	}
	return &MalformedPayloadError{Index: index, Err: err}
}

// wireField reduces a decoder field path such as "ProductRecord.rating" to
// the wire name of the leaf field.
func wireField(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ValidatePayload ensures the primary record and every similar record carry
// the fields the normalizer consumes.
func ValidatePayload(p *models.ProductPayload) error {
	if p == nil {
		return &MalformedPayloadError{Index: primaryIndex, Err: errors.New("payload is nil")}
	}
	if field := missingPrimaryField(&p.ProductRecord); field != "" {
		return &MalformedPayloadError{Field: field, Index: primaryIndex, Err: errMissing}
	}
	if p.SimilarProducts == nil {
		return &MalformedPayloadError{Field: "similar_products", Index: primaryIndex, Err: errMissing}
	}
	for i := range *p.SimilarProducts {
		if field := missingSimilarField(&(*p.SimilarProducts)[i]); field != "" {
			return &MalformedPayloadError{Field: field, Index: i, Err: errMissing}
		}
	}
	return nil
}

func missingPrimaryField(r *models.ProductRecord) string {
	if field := missingSimilarField(r); field != "" {
		return field
	}
	switch {
	case r.Availability == nil:
		return "availability"
	case r.Description == nil:
		return "description"
	case r.Style == nil:
		return "style"
	case r.TotalReviews == nil:
		return "total_reviews"
	}
	return ""
}

func missingSimilarField(r *models.ProductRecord) string {
	switch {
	case r.ID == nil:
		return "id"
	case r.ImageURL == nil:
		return "image_url"
	case r.Brand == nil:
		return "brand"
	case r.Price == nil:
		return "price"
	case r.Rating == nil:
		return "rating"
	case r.Title == nil:
		return "title"
	}
	return ""
}

// NormalizeProduct maps a validated wire record to a ProductDetail.
func NormalizeProduct(r models.ProductRecord) models.ProductDetail {
	return models.ProductDetail{
		ID:           value(r.ID),
		ImageURL:     value(r.ImageURL),
		Availability: value(r.Availability),
		Brand:        value(r.Brand),
		Description:  value(r.Description),
		Price:        value(r.Price),
		Rating:       value(r.Rating),
		Style:        value(r.Style),
		Title:        value(r.Title),
		TotalReviews: value(r.TotalReviews),
	}
}

// NormalizeSimilar maps a validated wire record to a SimilarProduct. It uses
// the same field mapping as NormalizeProduct.
func NormalizeSimilar(r models.ProductRecord) models.SimilarProduct {
	p := NormalizeProduct(r)
	return models.SimilarProduct{
		ID:           p.ID,
		ImageURL:     p.ImageURL,
		Availability: p.Availability,
		Brand:        p.Brand,
		Price:        p.Price,
		Rating:       p.Rating,
		Title:        p.Title,
		TotalReviews: p.TotalReviews,
	}
}

// NormalizePayload maps a validated payload to a snapshot, preserving the
// server order of similar products.
func NormalizePayload(p *models.ProductPayload) models.Snapshot {
	snap := models.Snapshot{
		Product: NormalizeProduct(p.ProductRecord),
		Similar: []models.SimilarProduct{},
	}
	if p.SimilarProducts == nil {
		return snap
	}
	snap.Similar = make([]models.SimilarProduct, 0, len(*p.SimilarProducts))
	for _, r := range *p.SimilarProducts {
		snap.Similar = append(snap.Similar, NormalizeSimilar(r))
	}
	return snap
}

func value[T any](ptr *T) T {
	var zero T
	if ptr == nil {
		return zero
	}
	return *ptr
}
