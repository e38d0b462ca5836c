package importer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	t.Run("plain fields", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, SplitFields("a,b,c"))
	})

	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, SplitFields(" a , b ,c "))
	})

	t.Run("comma inside quotes is never a separator", func(t *testing.T) {
		fields := SplitFields(`2026-01-15,"Acme, Inc.",8.00`)

		require.Len(t, fields, 3)
		assert.Equal(t, "Acme, Inc.", fields[1])
	})

	t.Run("strips surrounding quote pair", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, SplitFields(`"hello"`))
	})

	t.Run("empty fields preserved", func(t *testing.T) {
		assert.Equal(t, []string{"a", "", "c", ""}, SplitFields("a,,c,"))
	})

	t.Run("embedded newline survives", func(t *testing.T) {
		fields := SplitFields("\"line one\nline two\",x")

		require.Len(t, fields, 2)
		assert.Equal(t, "line one\nline two", fields[0])
	})
}

// Doubled quotes are intentionally NOT collapsed: a value written with
// standard doubled-quote escaping does not round-trip back to the original
// text. This pins down the current behavior so a future change to it is a
// conscious one.
func TestSplitFields_DoubledQuoteRoundTrip(t *testing.T) {
	original := `say "hi"`

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write([]string{original, "x"}))
	w.Flush()
	require.NoError(t, w.Error())

	record := strings.TrimRight(buf.String(), "\n")
	fields := SplitFields(record)

	require.Len(t, fields, 2)
	assert.NotEqual(t, original, fields[0])
	assert.Equal(t, `say ""hi""`, fields[0])
}
