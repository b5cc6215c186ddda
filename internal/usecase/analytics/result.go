package analytics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ColorBy selects the stacking dimension for batch analytics.
type ColorBy string

// Supported color-by dimensions.
const (
	ColorByNone       ColorBy = "none"
	ColorByTags       ColorBy = "tags"
	ColorByIndustries ColorBy = "industries"
)

// ParseColorBy maps a wire value to a ColorBy, defaulting to none.
func ParseColorBy(s string) ColorBy {
	switch ColorBy(strings.ToLower(strings.TrimSpace(s))) {
	case ColorByTags:
		return ColorByTags
	case ColorByIndustries:
		return ColorByIndustries
	default:
		return ColorByNone
	}
}

// CategoryCount is one stacked segment of a batch row.
type CategoryCount struct {
	Name  string
	Count int
}

// Row is one batch in chronological order. Categories is nil when color-by
// is none, otherwise it holds the selected categories in series order with
// the Other remainder last.
type Row struct {
	Batch      string
	Total      int
	Categories []CategoryCount
}

// Category returns the count for a named category, 0 when absent.
func (r Row) Category(name string) int {
	for _, c := range r.Categories {
		if c.Name == name {
			return c.Count
		}
	}
	return 0
}

// MarshalJSON flattens the categories into top-level fields so each row
// serializes as {"batch":..., "total":..., "<category>":n, ..., "Other":n}.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"batch":`)
	writeJSONString(&b, r.Batch)
	b.WriteString(`,"total":`)
	b.WriteString(strconv.Itoa(r.Total))
	for _, c := range r.Categories {
		b.WriteByte(',')
		writeJSONString(&b, c.Name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.Count))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeJSONString(b *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s)
	b.Write(enc)
}

// Result is the batch analytics payload.
type Result struct {
	ColorBy        ColorBy  `json:"colorBy"`
	TotalCompanies int      `json:"totalCompanies"`
	Series         []string `json:"series"`
	Rows           []Row    `json:"rows"`
}
