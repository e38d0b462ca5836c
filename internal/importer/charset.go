package importer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Charset labels reported by DecodeBytes.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
)

// DecodeBytes turns raw upload bytes into text. The whole slice is probed
// for strict UTF-8 validity first; any malformed sequence fails the attempt
// and the bytes are decoded as Windows-1252 instead. Spreadsheet exports
// regularly carry single-byte punctuation (bullets, smart quotes) that is
// not valid UTF-8, and guessing wrong corrupts text silently, so detection
// has to happen before any line is read.
func DecodeBytes(raw []byte) (string, string) {
	if utf8.Valid(raw) {
		return stripBOM(string(raw)), CharsetUTF8
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		// Windows-1252 maps every byte; decoding cannot realistically fail.
		return string(raw), CharsetWindows1252
	}
	return string(decoded), CharsetWindows1252
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
