package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/book-scraper/pkg/book"
)

func TestEncode_ExactLayout(t *testing.T) {
	records := book.Extract([]*book.Detail{
		{ID: json.Number("1"), Name: "Foo", Tags: []string{"a", "b"}},
		nil,
	})

	data, err := Encode(records)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `[
  {
    "书名": "Foo",
    "简介": "",
    "定价": "",
    "标签": "a, b",
    "作者": "",
    "出版时间": "",
    "出版社": "",
    "页数": "",
    "ISBN": ""
  }
]`
	if string(data) != want {
		t.Errorf("Encode output mismatch:\ngot:\n%s\nwant:\n%s", data, want)
	}
}

func TestEncode_CompactEquivalent(t *testing.T) {
	records := book.Extract([]*book.Detail{{ID: json.Number("1"), Name: "Foo", Tags: []string{"a", "b"}}})

	data, err := Encode(records)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	want := `[{"书名":"Foo","简介":"","定价":"","标签":"a, b","作者":"","出版时间":"","出版社":"","页数":"","ISBN":""}]`
	if compact.String() != want {
		t.Errorf("compact = %s, want %s", compact.String(), want)
	}
}

func TestEncode_NoEscaping(t *testing.T) {
	records := []book.Record{book.NewRecord(&book.Detail{
		Name:         "活着",
		Introduction: "<p>Tom & Jerry</p>",
	})}

	data, err := Encode(records)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "活着") {
		t.Errorf("Expected non-ASCII text unescaped, got %s", out)
	}
	if !strings.Contains(out, "<p>Tom & Jerry</p>") {
		t.Errorf("Expected HTML characters unescaped, got %s", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("Output should not end with a newline")
	}
}

func TestEncode_Empty(t *testing.T) {
	for _, records := range [][]book.Record{nil, {}} {
		data, err := Encode(records)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("Encode(%v) = %q, want []", records, data)
		}
	}
}

func TestEncode_Idempotent(t *testing.T) {
	details := []*book.Detail{
		{Name: "A", Price: json.Number("39.5"), Authors: []string{"x y"}, Tags: []string{`t\n1`}},
		nil,
		{Name: "B", PageNumber: json.Number("100"), ISBN: "9787"},
	}

	first, err := Encode(book.Extract(details))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode(book.Extract(details))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("Encode is not deterministic:\n%s\n---\n%s", first, second)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	records := []book.Record{book.NewRecord(&book.Detail{Name: "Foo"})}

	data, err := Write(path, records)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(onDisk, data) {
		t.Errorf("file content differs from returned bytes")
	}

	var decoded []map[string]any
	if err := json.Unmarshal(onDisk, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["书名"] != "Foo" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "data.json")
	if err := WriteFile(path, []byte("[]")); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}
