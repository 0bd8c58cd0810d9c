package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks, so
// "Liège" and "Liege" produce the same key.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizePlace canonicalizes a place name for cache keys and comparisons:
// trim, collapse inner whitespace, case-fold, strip diacritics.
func NormalizePlace(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	name = strings.ToLower(name)
	if stripped, _, err := transform.String(diacriticStripper, name); err == nil {
		name = stripped
	}
	return name
}

// DedupeFold deduplicates strings case-insensitively, preserving the order
// and casing of each first appearance. Blank entries are dropped.
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
