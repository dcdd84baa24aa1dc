// Package filename derives filesystem-safe names from user supplied strings
package filename

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxBytes bounds sanitized names well below common filesystem limits
const DefaultMaxBytes = 128

// Sanitize turns an uploaded file name into a single safe path element.
// The result is NFKC normalized, free of separators and control characters, keeps
// the extension when possible and never exceeds maxBytes.
func Sanitize(name string, maxBytes int) string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	name = norm.NFKC.String(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		clean = "upload"
	}
	if isWindowsReserved(strings.TrimSuffix(clean, filepath.Ext(clean))) {
		clean = "_" + clean
	}

	if len(clean) > maxBytes {
		ext := filepath.Ext(clean)
		if len(ext) >= maxBytes/2 {
			ext = ""
		}
		clean = truncateUTF8(strings.TrimSuffix(clean, ext), maxBytes-len(ext)) + ext
	}
	return clean
}

// ExportName builds the download name of an exported note: the title lowercased with
// every character outside a-z and 0-9 replaced by an underscore, plus ext.
func ExportName(title, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(norm.NFKC.String(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	base := b.String()
	if base == "" {
		base = "note"
	}
	return truncateUTF8(base, DefaultMaxBytes) + ext
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// isWindowsReserved checks if a name is a Windows reserved filename
func isWindowsReserved(name string) bool {
	switch strings.ToLower(name) {
	case "con", "prn", "aux", "nul",
		"com1", "com2", "com3", "com4", "com5", "com6", "com7", "com8", "com9",
		"lpt1", "lpt2", "lpt3", "lpt4", "lpt5", "lpt6", "lpt7", "lpt8", "lpt9":
		return true
	}
	return false
}
