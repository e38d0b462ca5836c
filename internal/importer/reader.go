package importer

import (
	"bufio"
	"strings"
)

// RecordReader returns one logical CSV record at a time. A logical record
// may span several physical lines when a quoted field contains embedded
// newlines, so physical lines are accumulated until every quoted span is
// closed again.
//
// Completion is tracked by quote parity: a record is complete when the
// accumulated count of double-quote characters is even. A doubled quote
// ("" inside a quoted field) contributes two characters and therefore never
// flips parity, which is exactly the "escaped literal must not toggle"
// rule.
type RecordReader struct {
	scanner *bufio.Scanner
	err     error
}

// NewRecordReader creates a reader over already-decoded text.
func NewRecordReader(text string) *RecordReader {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &RecordReader{scanner: scanner}
}

// Next returns the next logical record, or ok=false at end of input.
// A non-empty partial accumulation at EOF is returned rather than dropped,
// even when its quote count never closed. Malformed input is tolerated, not
// rejected.
func (r *RecordReader) Next() (string, bool) {
	var builder strings.Builder
	quotes := 0
	started := false

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if started {
			builder.WriteString("\n")
		}
		builder.WriteString(line)
		started = true

		quotes += strings.Count(line, `"`)
		if quotes%2 == 0 {
			return builder.String(), true
		}
	}

	// A scanner failure (a physical line past the buffer cap, for one)
	// must not masquerade as a clean EOF: the rest of the file would
	// vanish from the counts.
	if err := r.scanner.Err(); err != nil {
		r.err = err
		return "", false
	}

	if started {
		return builder.String(), true
	}
	return "", false
}

// Err returns the first scanner failure, or nil after a clean EOF.
func (r *RecordReader) Err() error {
	return r.err
}
