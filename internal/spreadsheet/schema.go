package spreadsheet

import (
	"strings"
)

// BatchSize bounds how many rows an importer handles per write.
const BatchSize = 100

type Column struct {
	Header   string
	Field    string
	Required bool
}

type Schema struct {
	Columns []Column
}

func (s Schema) Headers() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Header)
	}
	return out
}

// Row is one data row keyed by Column.Field. Number is the 1-based sheet
// row, so the first data row is 2.
type Row struct {
	Number int
	Values map[string]string
}

func (r Row) Get(field string) string {
	return r.Values[field]
}

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Summary struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

// Parsed is the schema pass over a sheet, before any domain validation.
type Parsed struct {
	Rows    []Row
	Errors  []RowError
	Skipped int
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), "*"))
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Parse maps the header row onto the schema and checks required values. A
// missing required header fails the whole sheet. Blank rows are skipped; a
// row missing a required value gets one error for the first such column.
func (s Schema) Parse(rows [][]string) (Parsed, error) {
	if len(rows) == 0 {
		return Parsed{}, ErrEmptySheet
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}

	positions := make([]int, len(s.Columns))
	var missing []string
	for i, c := range s.Columns {
		idx, ok := index[normalizeHeader(c.Header)]
		if !ok {
			idx = -1
			if c.Required {
				missing = append(missing, c.Header)
			}
		}
		positions[i] = idx
	}
	if len(missing) > 0 {
		return Parsed{}, ErrMissingHeader.WithDetails(map[string][]string{"missing": missing})
	}

	var out Parsed
	for n, raw := range rows[1:] {
		number := n + 2
		if blank(raw) {
			out.Skipped++
			continue
		}

		row := Row{Number: number, Values: make(map[string]string, len(s.Columns))}
		var rowErr *RowError
		for i, c := range s.Columns {
			v := cellValue(raw, positions[i])
			row.Values[c.Field] = v
			if c.Required && v == "" && rowErr == nil {
				rowErr = &RowError{Row: number, Field: c.Field, Message: c.Header + " is required"}
			}
		}
		if rowErr != nil {
			out.Errors = append(out.Errors, *rowErr)
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Batches splits items into consecutive chunks of at most size.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
