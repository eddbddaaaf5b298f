package service

import (
	"regexp"
	"strings"
)

const (
	minMessageRunes = 2
	maxMessageRunes = 500
	// Runs of one repeated character longer than this read as keyboard
	// mashing or flooding.
	maxRepeatedRun = 10
)

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(viagra|casino|lottery|winner|congratulations)\b`),
	regexp.MustCompile(`(?i)\b(click.*here|visit.*now|limited.*time)\b`),
	regexp.MustCompile(`\$\$\$|💰💰💰|🎰`),
}

// IsSpamMessage reports whether an inbound text should be silently
// dropped before it reaches the pipeline.
func IsSpamMessage(text string) bool {
	normalized := strings.ToLower(text)

	runes := []rune(normalized)
	if len(runes) < minMessageRunes || len(runes) > maxMessageRunes {
		return true
	}

	for _, pattern := range spamPatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}

	return longestRun(runes) > maxRepeatedRun
}

// longestRun returns the length of the longest run of one repeated rune.
// RE2 has no backreferences, so the repeated-character rule is a loop.
func longestRun(runes []rune) int {
	longest, current := 0, 0
	var prev rune
	for i, r := range runes {
		if i > 0 && r == prev {
			current++
		} else {
			current = 1
			prev = r
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}
