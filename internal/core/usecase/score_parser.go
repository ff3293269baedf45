package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reasoningSpanPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)
	reasoningTagPattern  = regexp.MustCompile(`(?i)</?think>`)
	// "4/5", "4 / 5" and "4 out of 5" name a scale, not a second score.
	scaleSuffixPattern  = regexp.MustCompile(`(?i)(?:/|\bout\s+of\b)\s*5(?:\.0+)?\b`)
	affirmativePattern  = regexp.MustCompile(`(?i)\byes\b`)
	negativePattern     = regexp.MustCompile(`(?i)\bno\b`)
	bareScorePattern    = regexp.MustCompile(`[0-5](?:\.[0-9]+)?`)
	leadInScorePattern  = regexp.MustCompile(`(?i)(?:okay|sure|yes|alright)[,\s]*([0-5](?:\.[0-9])?)`)
	emphaticMaxSequence = "12345"
)

type ratingWord struct {
	word  string
	score float64
}

// Checked in order; the first word present wins.
var ratingWords = []ratingWord{
	{"perfect", 5}, {"excellent", 5}, {"great", 4}, {"good", 3}, {"decent", 3},
	{"fair", 2}, {"poor", 2}, {"bad", 1}, {"terrible", 1}, {"awful", 0}, {"none", 0},
}

// ScoreMethod names the extraction step that produced a score.
type ScoreMethod string

const (
	ScoreMethodYesNo          ScoreMethod = "yes_no"
	ScoreMethodEmphatic       ScoreMethod = "emphatic"
	ScoreMethodNumeric        ScoreMethod = "numeric"
	ScoreMethodConversational ScoreMethod = "conversational"
	ScoreMethodRatingWord     ScoreMethod = "rating_word"
)

// ParseScore normalizes a free-text 0-5 rating into [0,1]. ok is false when
// no score could be extracted.
func ParseScore(reply string) (float64, bool) {
	score, _, ok := ParseScoreDetailed(reply)
	return score, ok
}

func ParseScoreDetailed(reply string) (float64, ScoreMethod, bool) {
	cleaned := stripReasoning(reply)
	if cleaned == "" {
		return 0, "", false
	}

	if affirmativePattern.MatchString(cleaned) {
		return 0.8, ScoreMethodYesNo, true
	}
	if negativePattern.MatchString(cleaned) {
		return 0.2, ScoreMethodYesNo, true
	}

	if strings.Contains(cleaned, emphaticMaxSequence) {
		return 1.0, ScoreMethodEmphatic, true
	}

	unscaled := scaleSuffixPattern.ReplaceAllString(cleaned, " ")
	if value, ok := maxBareScore(unscaled); ok {
		return normalizeScore(value), ScoreMethodNumeric, true
	}

	if match := leadInScorePattern.FindStringSubmatch(unscaled); len(match) == 2 {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return normalizeScore(value), ScoreMethodConversational, true
		}
	}

	lower := strings.ToLower(cleaned)
	for _, rw := range ratingWords {
		if strings.Contains(lower, rw.word) {
			return normalizeScore(rw.score), ScoreMethodRatingWord, true
		}
	}

	return 0, "", false
}

func stripReasoning(reply string) string {
	cleaned := reasoningSpanPattern.ReplaceAllString(reply, " ")
	cleaned = reasoningTagPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func maxBareScore(s string) (float64, bool) {
	best := -1.0
	for _, raw := range bareScorePattern.FindAllString(s, -1) {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || value > 5 {
			continue
		}
		if value > best {
			best = value
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func normalizeScore(value float64) float64 {
	return min(1.0, value/5.0)
}
