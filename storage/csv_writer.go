package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bikeshare-dashboard/models"
)

// CSVWriter writes a (filtered, possibly categorized) table to a CSV file in
// the same layout the loader reads. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// Path returns the output file path.
func (c *CSVWriter) Path() string { return c.path }

// Write writes the header row and every record.
func (c *CSVWriter) Write(table *models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cols := exportColumns(table)
	if err := c.writer.Write(cols); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(cols))
	for i := range table.Records {
		for j, col := range cols {
			row[j] = cellText(&table.Records[i], col)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
