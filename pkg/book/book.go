// Package book defines the wire types of the book-listing API and the fixed
// output record the scraper writes.
package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingID is returned when a list page result carries no id.
var ErrMissingID = errors.New("list result without id")

// ID identifies a book in the source API. The API may send it as a JSON
// number or string; it is kept verbatim for building detail URLs.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrMissingID
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as rendered into URLs.
func (id ID) String() string {
	return string(id)
}

// ListItem is one entry of a list page. Only the id is consumed.
type ListItem struct {
	ID *ID `json:"id"`
}

// ListPage is the body of the list endpoint.
type ListPage struct {
	Results []ListItem `json:"results"`
}

// IDs returns the ids of the page in response order.
func (p *ListPage) IDs() ([]ID, error) {
	if p == nil {
		return nil, nil
	}
	ids := make([]ID, 0, len(p.Results))
	for i, item := range p.Results {
		if item.ID == nil {
			return nil, fmt.Errorf("result %d: %w", i, ErrMissingID)
		}
		ids = append(ids, *item.ID)
	}
	return ids, nil
}

// Detail is the body of the detail endpoint. Scalar fields keep the JSON type
// the API sent (string or json.Number); every field is optional.
type Detail struct {
	ID           any      `json:"id"`
	Name         any      `json:"name"`
	Introduction any      `json:"introduction"`
	Price        any      `json:"price"`
	Tags         []string `json:"tags"`
	Authors      []string `json:"authors"`
	PublishedAt  any      `json:"published_at"`
	Publisher    any      `json:"publisher"`
	PageNumber   any      `json:"page_number"`
	ISBN         any      `json:"isbn"`

	// present holds every key of the decoded object, known or not.
	present map[string]bool
}

// UnmarshalJSON decodes the record (numbers as json.Number) and remembers
// which keys the body carried, so a key sent as null can be told apart from
// a missing one.
func (d *Detail) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decode detail: %w", err)
	}

	type fields Detail
	var f fields
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("decode detail: %w", err)
	}

	*d = Detail(f)
	d.present = make(map[string]bool, len(keys))
	for key := range keys {
		d.present[key] = true
	}
	return nil
}

// Has reports whether the decoded body carried key, even with a null value.
func (d *Detail) Has(key string) bool {
	return d != nil && d.present[key]
}

// IsEmpty reports whether the record is nil or an empty object. An object
// with only unknown or null keys is not empty.
func (d *Detail) IsEmpty() bool {
	if d == nil {
		return true
	}
	if len(d.present) > 0 {
		return false
	}
	return d.ID == nil && d.Name == nil && d.Introduction == nil && d.Price == nil &&
		d.Tags == nil && d.Authors == nil && d.PublishedAt == nil &&
		d.Publisher == nil && d.PageNumber == nil && d.ISBN == nil
}
