package service

import (
	"regexp"
	"sort"
	"strings"
)

// Spanish filler words that never identify a product.
var stopWords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {}, "unos": {}, "unas": {},
	"de": {}, "del": {}, "en": {}, "con": {}, "por": {}, "para": {}, "a": {}, "al": {},
	"y": {}, "o": {}, "pero": {}, "si": {}, "no": {}, "que": {}, "qué": {}, "como": {}, "cómo": {},
	"es": {}, "son": {}, "está": {}, "están": {}, "hay": {}, "tiene": {}, "tienen": {},
	"me": {}, "te": {}, "se": {}, "nos": {}, "les": {}, "le": {}, "lo": {},
	"quiero": {}, "quiere": {}, "queremos": {}, "quieren": {},
	"busco": {}, "busca": {}, "buscamos": {}, "buscan": {},
}

var (
	// Strips punctuation while keeping accented letters.
	nonWordPattern    = regexp.MustCompile(`[^\w\sáéíóúüñ]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	pureDigitsPattern = regexp.MustCompile(`^\d+$`)
)

// NormalizeText lowercases, strips punctuation (retaining accents) and
// collapses whitespace.
func NormalizeText(text string) string {
	normalized := strings.ToLower(text)
	normalized = nonWordPattern.ReplaceAllString(normalized, " ")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// ExtractKeywords produces a deduplicated list of candidate keywords and
// 2–3 word phrases from free text, most specific (longest) first.
// Pure function; empty input yields an empty list.
func ExtractKeywords(text string) []string {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil
	}

	var keywords []string
	for _, word := range strings.Split(normalized, " ") {
		if len([]rune(word)) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if pureDigitsPattern.MatchString(word) {
			continue
		}
		keywords = append(keywords, word)
	}

	// Adjacent 2- and 3-word phrases capture multi-word product names.
	var phrases []string
	for i := 0; i < len(keywords)-1; i++ {
		if len([]rune(keywords[i])) >= 3 && len([]rune(keywords[i+1])) >= 3 {
			phrases = append(phrases, keywords[i]+" "+keywords[i+1])
		}
		if i < len(keywords)-2 && len([]rune(keywords[i])) >= 3 {
			phrases = append(phrases, keywords[i]+" "+keywords[i+1]+" "+keywords[i+2])
		}
	}

	seen := make(map[string]struct{}, len(phrases)+len(keywords))
	all := make([]string, 0, len(phrases)+len(keywords))
	for _, kw := range append(phrases, keywords...) {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		all = append(all, kw)
	}

	// Longer entries are treated as more specific and consumed first.
	sort.SliceStable(all, func(i, j int) bool {
		return len([]rune(all[i])) > len([]rune(all[j]))
	})
	return all
}
