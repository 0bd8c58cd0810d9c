package utils

import "strings"

// Sport words and informal league names map onto the canonical competition
// names present in the fixture data. Kept deliberately small: anything not
// covered passes through unchanged and is matched loosely by the executor.
var competitionAliases = []struct {
	canonical string
	aliases   []string
}{
	{"Lotto Super League", []string{"lotto super league", "super league", "women's football", "womens football", "women football"}},
	{"Jupiler Pro League", []string{"jupiler pro league", "jupiler league", "pro league", "football", "soccer"}},
	{"BNXT League", []string{"bnxt league", "bnxt", "basketball"}},
	{"Belgian Volley League Women", []string{"belgian volley league women", "women's volleyball", "womens volleyball"}},
	{"Lotto Volley League Men", []string{"lotto volley league", "volley league", "volleyball", "volley"}},
}

// CanonicalCompetition resolves an informal competition or sport mention
// ("football", "Pro League") to the canonical competition name. The second
// return value reports whether an alias matched.
func CanonicalCompetition(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	for _, entry := range competitionAliases {
		for _, alias := range entry.aliases {
			if needle == alias || strings.Contains(needle, alias) {
				return entry.canonical, true
			}
		}
	}
	return name, false
}
