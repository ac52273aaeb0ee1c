package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aluiziolira/go-product-details/models"
)

// DualPaths derives the CSV and JSONL paths for a dual export. The JSONL file
// sits next to the CSV file with its extension swapped: "out/p.csv" gives
// "out/p.json". A name that already ends in ".json" would collide and is
// refused.
func DualPaths(filename string) (csvPath, jsonPath string, err error) {
	if filename == "" {
		return "", "", errors.New("dual export needs a file name")
	}
	jsonPath = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".json"
	if filepath.Clean(jsonPath) == filepath.Clean(filename) {
		return "", "", fmt.Errorf("dual export: %s would be both the CSV and the JSON file", filename)
	}
	return filename, jsonPath, nil
}

// DualWriter writes the same snapshot as CSV and JSONL and checks that both
// files describe the same products.
type DualWriter struct {
	csvWriter  *CSVWriter
	jsonWriter *JSONWriter
	mu         sync.Mutex
}

// NewDualWriter creates both files for filename, see DualPaths.
func NewDualWriter(filename string) (*DualWriter, error) {
	csvPath, jsonPath, err := DualPaths(filename)
	if err != nil {
		return nil, err
	}

	csvWriter, err := NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonPath)
	if err != nil {
		csvWriter.Close()
		return nil, fmt.Errorf("failed to create JSON writer: %w", err)
	}

	return &DualWriter{
		csvWriter:  csvWriter,
		jsonWriter: jsonWriter,
	}, nil
}

// Write writes the snapshot to both outputs.
func (dw *DualWriter) Write(snap models.Snapshot) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if err := dw.csvWriter.Write(snap); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if err := dw.jsonWriter.Write(snap); err != nil {
		return fmt.Errorf("JSON write failed: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	var errs []error
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("CSV close failed: %w", err))
	}
	if err := dw.jsonWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("JSON close failed: %w", err))
	}
	return errors.Join(errs...)
}

// Validate validates both files and that they hold the same number of
// products.
func (dw *DualWriter) Validate() error {
	var errs []error
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("CSV validation failed: %w", err))
	}
	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("JSON validation failed: %w", err))
	}
	if len(errs) == 0 {
		dw.mu.Lock()
		rows, records := dw.csvWriter.rows, dw.jsonWriter.records
		dw.mu.Unlock()
		if rows != records {
			errs = append(errs, fmt.Errorf("CSV has %d products, JSON has %d", rows, records))
		}
	}
	return errors.Join(errs...)
}

// Paths returns the CSV path followed by the JSON path.
func (dw *DualWriter) Paths() []string {
	return append(dw.csvWriter.Paths(), dw.jsonWriter.Paths()...)
}
