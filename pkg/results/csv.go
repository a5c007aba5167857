package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSVWriter exports records as CSV, flushing after each row.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter writes the header to w.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.write(Columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return cw, nil
}

// CreateCSV truncates filename and returns a writer for it.
func CreateCSV(filename string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o750); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}
	cw, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	cw.closer = f
	return cw, nil
}

func (c *CSVWriter) Write(r Record) error {
	return c.write(r.Values())
}

func (c *CSVWriter) write(row []string) error {
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	if c.closer == nil {
		return c.w.Error()
	}
	return c.closer.Close()
}
