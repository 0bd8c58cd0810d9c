package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAIJSON parses JSON out of language-model output. Models asked for
// "ONLY JSON" still wrap the payload in markdown fences or prose often
// enough that a plain Unmarshal is not reliable, so this tries, in order:
// direct parse, markdown code fences, and the first balanced JSON object
// or array embedded in the text.
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if fenced := extractFenced(input); fenced != "" {
		if err := json.Unmarshal([]byte(fenced), target); err == nil {
			return nil
		}
	}

	if embedded := extractEmbedded(input); embedded != "" {
		if err := json.Unmarshal([]byte(embedded), target); err == nil {
			return nil
		}
		// One repair pass for trailing commas and unquoted keys.
		if err := json.Unmarshal([]byte(repairJSON(embedded)), target); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(repairJSON(input)), target); err == nil {
		return nil
	}

	return fmt.Errorf("no parseable JSON in model output: %s", truncate(input, 120))
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

func extractFenced(input string) string {
	m := fenceRe.FindStringSubmatch(input)
	if len(m) < 2 {
		return ""
	}
	body := strings.TrimSpace(m[1])
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return body
	}
	return ""
}

func extractEmbedded(input string) string {
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(input, pair[0])
		if start < 0 {
			continue
		}
		if body := balancedSlice(input[start:], pair[0], pair[1]); body != "" {
			return body
		}
	}
	return ""
}

// balancedSlice returns the shortest prefix of input that closes the
// opening delimiter, respecting string literals and escapes.
func balancedSlice(input string, open, close byte) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
)

func repairJSON(input string) string {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
