package importer

import "strings"

// SplitFields tokenizes one logical record into raw field strings. Commas
// inside a quoted span are literal; the in-quotes flag toggles at every
// double quote. Each field is whitespace-trimmed and a single surrounding
// quote pair is stripped.
//
// Doubled quotes inside a field are NOT collapsed to a single character:
// `"say ""hi"""` yields `say ""hi""`, not `say "hi"`. This matches the
// long-standing behavior of the system this replaces and is preserved for
// compatibility with files already in circulation.
func SplitFields(record string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, r := range record {
		switch r {
		case '"':
			inQuotes = !inQuotes
			field.WriteRune(r)
		case ',':
			if inQuotes {
				field.WriteRune(r)
			} else {
				fields = append(fields, finalizeField(field.String()))
				field.Reset()
			}
		default:
			field.WriteRune(r)
		}
	}

	fields = append(fields, finalizeField(field.String()))
	return fields
}

// finalizeField trims whitespace and strips one outer quote pair.
func finalizeField(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}
