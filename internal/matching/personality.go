// internal/matching/personality.go
// Keyword heuristic that derives a five trait personality vector.

package matching

import (
	"math"
	"strings"
)

const analysisConfidence = 0.85

type traitKeywords struct {
	openness          []string
	conscientiousness []string
	extraversion      []string
	agreeableness     []string
	neuroticism       []string
}

var bioKeywords = traitKeywords{
	openness:          []string{"creative", "art", "music", "travel", "adventure", "explore", "new", "different"},
	conscientiousness: []string{"organized", "plan", "goal", "work", "professional", "disciplined", "responsible"},
	extraversion:      []string{"social", "people", "party", "friends", "outgoing", "energy", "fun", "meet"},
	agreeableness:     []string{"kind", "help", "care", "love", "family", "community", "support", "friendly"},
	neuroticism:       []string{"stress", "worry", "anxiety", "difficult", "hard", "challenge", "struggle"},
}

var (
	creativeInterests     = []string{"art", "music", "writing", "photography", "design", "painting"}
	socialInterests       = []string{"dancing", "parties", "networking", "volunteering", "community"}
	intellectualInterests = []string{"reading", "science", "philosophy", "learning", "research"}
	activeInterests       = []string{"sports", "hiking", "gym", "running", "climbing", "swimming"}
	technicalInterests    = []string{"technology", "coding", "engineering", "gaming", "computers"}
)

// AnalyzePersonality is deterministic: equal inputs give equal vectors.
func AnalyzePersonality(bio string, interests []string, age *int, occupation string) PersonalityAnalysis {
	b := bioTraits(bio)
	i := interestTraits(interests)
	d := demographicTraits(age, occupation)

	v := PersonalityVector{
		Openness:          round1(b.Openness*0.4 + i.Openness*0.4 + d.Openness*0.2),
		Conscientiousness: round1(b.Conscientiousness*0.3 + d.Conscientiousness*0.7),
		Extraversion:      round1(b.Extraversion*0.5 + i.Extraversion*0.3 + d.Extraversion*0.2),
		Agreeableness:     round1(b.Agreeableness*0.6 + i.Agreeableness*0.4),
		Neuroticism:       round1(b.Neuroticism*0.7 + d.Neuroticism*0.3),
	}

	return PersonalityAnalysis{
		Vector:      v,
		SocialScore: SocialScore(v),
		Confidence:  analysisConfidence,
	}
}

func SocialScore(v PersonalityVector) float64 {
	return round1(v.Extraversion*0.4 + v.Agreeableness*0.3 + (10-v.Neuroticism)*0.3)
}

// AnalyzeProfile runs AnalyzePersonality on the profile's own fields.
func AnalyzeProfile(p *Profile) PersonalityAnalysis {
	return AnalyzePersonality(p.Bio, p.Interests, p.Age, p.Occupation)
}

func bioTraits(bio string) PersonalityVector {
	text := strings.ToLower(bio)
	score := func(keywords []string, step float64) float64 {
		s := neutralTrait
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				s += step
			}
		}
		return clamp(s, 1, 10)
	}
	return PersonalityVector{
		Openness:          score(bioKeywords.openness, 0.5),
		Conscientiousness: score(bioKeywords.conscientiousness, 0.5),
		Extraversion:      score(bioKeywords.extraversion, 0.5),
		Agreeableness:     score(bioKeywords.agreeableness, 0.5),
		Neuroticism:       score(bioKeywords.neuroticism, -0.5),
	}
}

func interestTraits(interests []string) PersonalityVector {
	var creative, social, intellectual, active, technical float64
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		if containsAny(lower, creativeInterests) {
			creative++
		}
		if containsAny(lower, socialInterests) {
			social++
		}
		if containsAny(lower, intellectualInterests) {
			intellectual++
		}
		if containsAny(lower, activeInterests) {
			active++
		}
		if containsAny(lower, technicalInterests) {
			technical++
		}
	}
	return PersonalityVector{
		Openness:          math.Min(10, neutralTrait+creative*0.8+intellectual*0.6),
		Conscientiousness: math.Min(10, neutralTrait+technical*0.5),
		Extraversion:      math.Min(10, neutralTrait+social*1.0+active*0.4),
		Agreeableness:     math.Min(10, neutralTrait+social*0.6),
		Neuroticism:       math.Max(1, neutralTrait-active*0.3),
	}
}

func demographicTraits(age *int, occupation string) PersonalityVector {
	v := PersonalityVector{
		Openness:          neutralTrait,
		Conscientiousness: neutralTrait,
		Extraversion:      neutralTrait,
		Agreeableness:     neutralTrait,
		Neuroticism:       neutralTrait,
	}

	if age != nil && *age > 0 {
		if *age > 30 {
			v.Conscientiousness++
			v.Neuroticism -= 0.5
		}
		if *age < 25 {
			v.Openness++
			v.Extraversion += 0.5
		}
	}

	occ := strings.ToLower(occupation)
	if occ != "" {
		if strings.Contains(occ, "artist") || strings.Contains(occ, "creative") {
			v.Openness += 2
		}
		if strings.Contains(occ, "manager") || strings.Contains(occ, "leader") {
			v.Extraversion++
			v.Conscientiousness++
		}
		if strings.Contains(occ, "engineer") || strings.Contains(occ, "developer") {
			v.Conscientiousness++
			v.Openness += 0.5
		}
	}

	v.Openness = clamp(v.Openness, 1, 10)
	v.Conscientiousness = clamp(v.Conscientiousness, 1, 10)
	v.Extraversion = clamp(v.Extraversion, 1, 10)
	v.Agreeableness = clamp(v.Agreeableness, 1, 10)
	v.Neuroticism = clamp(v.Neuroticism, 1, 10)
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
