package question

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// DefaultThreshold is the fuzzy similarity score (0-100) at or above
// which a candidate question counts as a duplicate.
const DefaultThreshold = 80

// IsSimilar reports whether candidate duplicates any question in
// existing. Only questions of the same type are compared. For
// single-choice questions a text match alone is not enough: at least
// one option pair must also clear the threshold, so two questions that
// merely share phrasing but test different facts both survive.
func IsSimilar(candidate model.Question, existing []model.Question, threshold int) bool {
	candText := strings.TrimSpace(candidate.Question)

	for _, old := range existing {
		if old.Type != candidate.Type {
			continue
		}
		score := fuzzy.Ratio(candText, strings.TrimSpace(old.Question))
		if score < threshold {
			continue
		}
		if candidate.Type == model.TypeSingleChoice && len(candidate.Options) > 0 && len(old.Options) > 0 {
			if hasSimilarOption(candidate.Options, old.Options, threshold) {
				return true
			}
			continue
		}
		return true
	}
	return false
}

func hasSimilarOption(a, b []string, threshold int) bool {
	for _, opt := range a {
		for _, other := range b {
			if fuzzy.Ratio(opt, other) >= threshold {
				return true
			}
		}
	}
	return false
}
