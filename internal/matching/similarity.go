// internal/matching/similarity.go
// Per-dimension similarity functions. None of them fail: absent data maps to
// a fixed fallback score.

package matching

import (
	"math"
	"strings"
)

const (
	locationUnknown   = 0.2
	locationStrong    = 0.6
	locationPrefix    = 0.4
	ageUnknown        = 0.5
	occupationUnknown = 0.3
	neutralTrait      = 5.0
	neutralPercent    = 50
)

// InterestSimilarity is the Jaccard index of the two normalized interest sets.
func InterestSimilarity(a, b []string) float64 {
	setA, setB := interestSet(a), interestSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	common := 0
	for interest := range setA {
		if _, ok := setB[interest]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return float64(common) / float64(union)
}

// SharedInterests returns the interests of a that b also lists, in a's order
// and with a's spelling.
func SharedInterests(a, b []string) []string {
	setB := interestSet(b)
	shared := []string{}
	seen := make(map[string]struct{})
	for _, interest := range a {
		n := normalize(interest)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		if _, ok := setB[n]; ok {
			seen[n] = struct{}{}
			shared = append(shared, strings.TrimSpace(interest))
		}
	}
	return shared
}

// SameArea reports whether two locations are equal or share a whole
// comma-separated segment, e.g. "Ikeja, Lagos" and "Lagos".
func SameArea(a, b string) bool {
	locA, locB := normalize(a), normalize(b)
	if locA == "" || locB == "" {
		return false
	}
	if locA == locB {
		return true
	}
	for _, pa := range LocationSegments(locA) {
		for _, pb := range LocationSegments(locB) {
			if pa == pb {
				return true
			}
		}
	}
	return false
}

func LocationSimilarity(a, b string) float64 {
	locA, locB := normalize(a), normalize(b)
	if locA == "" || locB == "" {
		return locationUnknown
	}
	if locA == locB {
		return 1.0
	}

	partsA, partsB := LocationSegments(locA), LocationSegments(locB)

	for _, pa := range partsA {
		for _, pb := range partsB {
			if pa == pb ||
				(strings.Contains(pa, pb) && runeLen(pb) > 2) ||
				(strings.Contains(pb, pa) && runeLen(pa) > 2) {
				return locationStrong
			}
		}
	}

	wordsB := make(map[string]struct{})
	for _, w := range LocationWords(partsB) {
		wordsB[w] = struct{}{}
	}
	for _, w := range LocationWords(partsA) {
		if _, ok := wordsB[w]; ok {
			return locationStrong
		}
	}

	for _, pa := range partsA {
		for _, pb := range partsB {
			if runeLen(pa) > 3 && runeLen(pb) > 3 &&
				(strings.Contains(pa, prefix(pb, 3)) || strings.Contains(pb, prefix(pa, 3))) {
				return locationPrefix
			}
		}
	}

	for _, pa := range partsA {
		for _, pb := range partsB {
			if pa == pb {
				return locationStrong
			}
		}
	}

	return locationUnknown
}

func AgeCompatibility(a, b *int) float64 {
	if a == nil || b == nil || *a <= 0 || *b <= 0 {
		return ageUnknown
	}
	d := *a - *b
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 2:
		return 1.0
	case d <= 5:
		return 0.8
	case d <= 10:
		return 0.6
	}
	return 0.3
}

// OccupationSimilarity compares raw strings first, then derived categories.
// Two unclassified occupations share the "other" category.
func OccupationSimilarity(a, b string) float64 {
	occA, occB := normalize(a), normalize(b)
	if occA == "" || occB == "" {
		return occupationUnknown
	}
	if occA == occB {
		return 1.0
	}
	if ClassifyOccupation(occA) == ClassifyOccupation(occB) {
		return 0.7
	}
	return 0.2
}

// BioSimilarity counts the tokens of a's bag found in b, over the number of
// distinct tokens in both. Repeated words can push the raw ratio past 1, so
// the result is capped.
func BioSimilarity(a, b string) float64 {
	tokensA, tokensB := BioTokens(a), BioTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	bagB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		bagB[t] = struct{}{}
	}
	union := make(map[string]struct{}, len(tokensA)+len(tokensB))
	for t := range bagB {
		union[t] = struct{}{}
	}
	overlap := 0
	for _, t := range tokensA {
		union[t] = struct{}{}
		if _, ok := bagB[t]; ok {
			overlap++
		}
	}
	return math.Min(1, float64(overlap)/float64(len(union)))
}

// personalityCosine is the cosine similarity of two trait vectors scaled to
// [0,100]. A zero trait counts as neutral.
func personalityCosine(a, b *PersonalityVector) float64 {
	if a == nil || b == nil {
		return neutralPercent
	}
	var dot, magA, magB float64
	ta, tb := a.traits(), b.traits()
	for i := range ta {
		va, vb := ta[i], tb[i]
		if va == 0 {
			va = neutralTrait
		}
		if vb == 0 {
			vb = neutralTrait
		}
		dot += va * vb
		magA += va * va
		magB += vb * vb
	}
	return clamp(dot/(math.Sqrt(magA)*math.Sqrt(magB))*100, 0, 100)
}

// PersonalityCompatibility returns the cosine match as an integer percent;
// 50 when either vector is missing.
func PersonalityCompatibility(a, b *PersonalityVector) int {
	return int(math.Round(personalityCosine(a, b)))
}

func traitDistance(a, b *PersonalityVector) TraitDistance {
	if a == nil || b == nil {
		return TraitDistance{}
	}
	return TraitDistance{
		Openness:          math.Abs(a.Openness - b.Openness),
		Conscientiousness: math.Abs(a.Conscientiousness - b.Conscientiousness),
		Extraversion:      math.Abs(a.Extraversion - b.Extraversion),
		Agreeableness:     math.Abs(a.Agreeableness - b.Agreeableness),
		Neuroticism:       math.Abs(a.Neuroticism - b.Neuroticism),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}
