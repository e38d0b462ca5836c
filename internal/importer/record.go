package importer

import "strings"

// Record is one parsed CSV data row, indexed by normalized header name.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// NewRecord pairs an ordered header list with a same-order value list.
// Short rows leave trailing headers mapped to the empty string.
func NewRecord(rowNumber int, headers []string, values []string) Record {
	m := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(values) {
			m[header] = values[i]
		} else {
			m[header] = ""
		}
	}
	return Record{RowNumber: rowNumber, Values: m}
}

// Get returns the first non-blank value among the given header aliases.
func (r Record) Get(aliases ...string) string {
	for _, alias := range aliases {
		if value, ok := r.Values[normalizeHeader(alias)]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// normalizeHeader lower-cases a header and strips underscores, spaces and
// hyphens so "Task_Date", "task date" and "taskdate" all collide.
func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}

// normalizeHeaders normalizes every header in place-order.
func normalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, header := range headers {
		normalized[i] = normalizeHeader(header)
	}
	return normalized
}
