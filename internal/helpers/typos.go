package helpers

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Suggests the closest known name for a misspelled one. Single-character
// deletions are answered from a precomputed table. Anything else falls back
// to the smallest Levenshtein distance within a budget that grows with the
// length of the input.
type TypoDetector struct {
	valid        []string
	oneCharTypos map[string]string
}

func MakeTypoDetector(valid []string) TypoDetector {
	detector := TypoDetector{
		valid:        valid,
		oneCharTypos: make(map[string]string),
	}

	// Add all combinations of each valid word with one character missing
	for _, correct := range valid {
		if len(correct) > 3 {
			for i, ch := range correct {
				detector.oneCharTypos[correct[:i]+correct[i+utf8.RuneLen(ch):]] = correct
			}
		}
	}

	return detector
}

func (detector TypoDetector) MaybeCorrectTypo(typo string) (string, bool) {
	// Check for a single deleted character
	if corrected, ok := detector.oneCharTypos[typo]; ok {
		return corrected, true
	}

	// Check for a single misplaced character
	for i, ch := range typo {
		if corrected, ok := detector.oneCharTypos[typo[:i]+typo[i+utf8.RuneLen(ch):]]; ok {
			return corrected, true
		}
	}

	budget := max(1, utf8.RuneCountInString(typo)/3)
	best := ""
	bestDistance := budget + 1
	for _, candidate := range detector.valid {
		if candidate == typo {
			continue
		}
		if distance := edlib.LevenshteinDistance(typo, candidate); distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}

	return best, best != ""
}
