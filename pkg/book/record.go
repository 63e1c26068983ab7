package book

import "strings"

// Record is one entry of the output file. Field order is the key order of
// the written JSON object.
type Record struct {
	Name         any    `json:"书名"`
	Introduction any    `json:"简介"`
	Price        any    `json:"定价"`
	Tags         string `json:"标签"`
	Authors      string `json:"作者"`
	PublishedAt  any    `json:"出版时间"`
	Publisher    any    `json:"出版社"`
	PageNumber   any    `json:"页数"`
	ISBN         any    `json:"ISBN"`
}

// listSeparator joins tags and authors.
const listSeparator = ", "

// NewRecord maps a detail record onto the output schema. Missing scalars
// become "" while scalars sent as null stay null; missing or null lists
// become "".
func NewRecord(d *Detail) Record {
	return Record{
		Name:         d.scalar("name", d.Name),
		Introduction: d.scalar("introduction", d.Introduction),
		Price:        d.scalar("price", d.Price),
		Tags:         JoinClean(d.Tags),
		Authors:      JoinClean(d.Authors),
		PublishedAt:  d.scalar("published_at", d.PublishedAt),
		Publisher:    d.scalar("publisher", d.Publisher),
		PageNumber:   d.scalar("page_number", d.PageNumber),
		ISBN:         d.scalar("isbn", d.ISBN),
	}
}

// Extract maps every detail record, in order. Failed (nil) records and empty
// objects are dropped; any other object yields a record, possibly all defaults. The result is never nil.
func Extract(details []*Detail) []Record {
	records := make([]Record, 0, len(details))
	for _, d := range details {
		if d.IsEmpty() {
			continue
		}
		records = append(records, NewRecord(d))
	}
	return records
}

// JoinClean strips literal `\n` sequences and spaces from each item and joins
// the results with ", ". Items that end up blank keep their slot.
func JoinClean(items []string) string {
	cleaned := make([]string, len(items))
	for i, item := range items {
		item = strings.ReplaceAll(item, `\n`, "")
		cleaned[i] = strings.ReplaceAll(item, " ", "")
	}
	return strings.Join(cleaned, listSeparator)
}

// scalar defaults an absent key to "" and keeps everything else, null included.
func (d *Detail) scalar(key string, v any) any {
	if v == nil && !d.Has(key) {
		return ""
	}
	return v
}
