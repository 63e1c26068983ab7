// Package export serializes output records and writes them to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sternrassler/book-scraper/pkg/book"
)

// DefaultPath is the output file written into the working directory.
const DefaultPath = "data.json"

// Encode renders records as a UTF-8 JSON array with 2-space indentation.
// Non-ASCII text and HTML characters are written as-is and there is no
// trailing newline, so equal input always yields equal bytes.
func Encode(records []book.Record) ([]byte, error) {
	if records == nil {
		records = []book.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteFile writes encoded output to path in a single write, replacing any
// existing file.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Write encodes records and writes them to path. It returns the encoded bytes
// so callers can ship the same payload elsewhere.
func Write(path string, records []book.Record) ([]byte, error) {
	data, err := Encode(records)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, data); err != nil {
		return nil, err
	}
	return data, nil
}
