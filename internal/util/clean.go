package util

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// typographic punctuation folded to ASCII before analysis
var punctuationFolds = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'",
	"\u201C", "\"", "\u201D", "\"",
	"\u2013", "-", "\u2014", "--",
	"\u2026", "...", "\u00a0", " ",
)

// IsLikelyBinary reports whether data has a NUL byte within its first 512 bytes.
func IsLikelyBinary(data []byte) bool {
	if len(data) > maxBinaryCheckBytes {
		data = data[:maxBinaryCheckBytes]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// CleanInput strips a BOM, repairs invalid UTF-8 and folds typographic
// punctuation. src names the input in log lines.
func CleanInput(data []byte, src string) (string, error) {
	if IsLikelyBinary(data) {
		return "", fmt.Errorf("%s looks like binary data", src)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		log.WithField("source", src).Warn("invalid UTF-8, replacing invalid sequences")
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}

	return punctuationFolds.Replace(string(data)), nil
}

// Slugify lowercases name and joins its letter/digit runs with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
