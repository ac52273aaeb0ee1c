// Package export writes product snapshots to CSV and JSONL files.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/go-product-details/models"
)

// Record roles.
const (
	RolePrimary = "primary"
	RoleSimilar = "similar"
)

// Writer defines the interface for snapshot output.
type Writer interface {
	Write(snap models.Snapshot) error
	Close() error
	Validate() error
	// Paths lists the files the writer produces.
	Paths() []string
}

// New returns the writer for format ("csv", "json" or "dual").
func New(format, filename string) (Writer, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONWriter(filename)
	case "csv":
		return NewCSVWriter(filename)
	case "dual":
		return NewDualWriter(filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// csvHeader lists the columns written for every product.
var csvHeader = []string{"role", "id", "title", "brand", "price", "rating", "availability", "description", "style", "total_reviews", "image_url"}

// CSVWriter writes one row per product, primary first.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends the snapshot rows.
func (cw *CSVWriter) Write(snap models.Snapshot) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	p := snap.Product
	rows := make([][]string, 0, len(snap.Similar)+1)
	rows = append(rows, []string{
		RolePrimary,
		string(p.ID),
		p.Title,
		p.Brand,
		formatFloat(p.Price),
		formatFloat(p.Rating),
		p.Availability,
		p.Description,
		p.Style,
		strconv.Itoa(p.TotalReviews),
		p.ImageURL,
	})
	for _, s := range snap.Similar {
		rows = append(rows, []string{
			RoleSimilar,
			string(s.ID),
			s.Title,
			s.Brand,
			formatFloat(s.Price),
			formatFloat(s.Rating),
			s.Availability,
			"",
			"",
			strconv.Itoa(s.TotalReviews),
			s.ImageURL,
		})
	}

	if err := cw.writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv records: %w", err)
	}
	cw.rows += len(rows)
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures at least one product row follows the header.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	rows := cw.rows
	cw.mu.Unlock()

	if rows == 0 {
		return fmt.Errorf("csv file %s has no product rows", cw.file.Name())
	}
	if _, err := os.Stat(cw.file.Name()); err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	return nil
}

// Paths returns the CSV file name.
func (cw *CSVWriter) Paths() []string {
	return []string{cw.file.Name()}
}

// jsonRecord is one JSONL line.
type jsonRecord struct {
	Role    string                 `json:"role"`
	Product *models.ProductDetail  `json:"product,omitempty"`
	Similar *models.SimilarProduct `json:"similar,omitempty"`
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	records int
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends the snapshot in JSONL format, primary first.
func (jw *JSONWriter) Write(snap models.Snapshot) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	product := snap.Product
	if err := jw.encoder.Encode(jsonRecord{Role: RolePrimary, Product: &product}); err != nil {
		return fmt.Errorf("encode json record: %w", err)
	}
	jw.records++
	for i := range snap.Similar {
		if err := jw.encoder.Encode(jsonRecord{Role: RoleSimilar, Similar: &snap.Similar[i]}); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		jw.records++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures at least one record was written.
func (jw *JSONWriter) Validate() error {
	jw.mu.Lock()
	records := jw.records
	jw.mu.Unlock()

	if records == 0 {
		return fmt.Errorf("json file %s has no records", jw.file.Name())
	}
	if _, err := os.Stat(jw.file.Name()); err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	return nil
}

// Paths returns the JSON file name.
func (jw *JSONWriter) Paths() []string {
	return []string{jw.file.Name()}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
