package matching

import (
	"fmt"
	"strings"
)

// MatchReason renders a short explanation of a discovery score.
func MatchReason(score float64, b SimilarityBreakdown) string {
	var reasons []string

	switch {
	case b.Interest > 0.6:
		reasons = append(reasons, fmt.Sprintf("Strong shared interests (%d%%)", Percent(b.Interest)))
	case b.Interest > 0.3:
		reasons = append(reasons, fmt.Sprintf("Some common interests (%d%%)", Percent(b.Interest)))
	}

	switch {
	case b.Location > 0.8:
		reasons = append(reasons, "Same location")
	case b.Location > 0.5:
		reasons = append(reasons, "Similar location")
	}

	if b.Age > 0.8 {
		reasons = append(reasons, "Similar age")
	}
	if b.Occupation > 0.6 {
		reasons = append(reasons, "Related profession")
	}

	reasons = append(reasons, fmt.Sprintf("%s overall compatibility (%d%%)", scoreCategory(score), Percent(score)))
	return strings.Join(reasons, " • ")
}

func scoreCategory(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent"
	case score >= 0.6:
		return "Great"
	case score >= 0.4:
		return "Good"
	}
	return "Fair"
}
