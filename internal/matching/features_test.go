package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterests(t *testing.T) {
	got := NormalizeInterests([]string{" Music", "music", "", "Travel ", "   "})
	assert.Equal(t, []string{"music", "travel"}, got)
	assert.Empty(t, NormalizeInterests(nil))
}

func TestLocationTokens(t *testing.T) {
	segments := LocationSegments(" Dhanmondi, Dhaka ,, Bangladesh")
	assert.Equal(t, []string{"dhanmondi", "dhaka", "bangladesh"}, segments)

	words := LocationWords(LocationSegments("New York City, NY"))
	assert.Equal(t, []string{"new", "york", "city"}, words)
}

func TestClassifyOccupation(t *testing.T) {
	tests := []struct {
		occupation string
		want       OccupationCategory
	}{
		{"Software Engineer", OccupationTech},
		{"Data Scientist", OccupationTech},
		{"creative technologist", OccupationTech},
		{"Teacher", OccupationEducation},
		{"Nurse", OccupationHealth},
		{"Farmer", OccupationAgriculture},
		{"Chef", OccupationService},
		{"Juggler", OccupationOther},
		{"", OccupationOther},
	}
	for _, tt := range tests {
		t.Run(tt.occupation, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOccupation(tt.occupation))
		})
	}
}

func TestBioTokens(t *testing.T) {
	assert.Equal(t, []string{"hello", "hello", "world"}, BioTokens("  Hello hello\tWORLD "))
	assert.Empty(t, BioTokens(""))
}

func TestCategorizeInterests(t *testing.T) {
	got := CategorizeInterests([]string{"Coding", "Hiking trips", "reading books", "coding"})
	assert.Equal(t, []string{"Technology", "Nature", "Entertainment"}, got)
	assert.Empty(t, CategorizeInterests(nil))
}

func TestAgeGroup(t *testing.T) {
	assert.Equal(t, "unknown", AgeGroup(nil))
	assert.Equal(t, "unknown", AgeGroup(intPtr(0)))
	assert.Equal(t, "young_adult", AgeGroup(intPtr(24)))
	assert.Equal(t, "adult", AgeGroup(intPtr(25)))
	assert.Equal(t, "middle_age", AgeGroup(intPtr(49)))
	assert.Equal(t, "senior", AgeGroup(intPtr(50)))
}

func TestEducationLevel(t *testing.T) {
	assert.Equal(t, 5, EducationLevel(""))
	assert.Equal(t, 10, EducationLevel("PhD in Physics"))
	assert.Equal(t, 8, EducationLevel("Master of Arts"))
	assert.Equal(t, 6, EducationLevel("Bachelor"))
	assert.Equal(t, 5, EducationLevel("Dhaka University"))
	assert.Equal(t, 3, EducationLevel("High school"))
}

func TestExtractFeatures(t *testing.T) {
	p := &Profile{Interests: []string{"coding"}, Age: intPtr(28), Education: "Masters"}
	analysis := AnalyzeProfile(p)

	got := ExtractFeatures(p, analysis)

	assert.Equal(t, []string{"Technology"}, got.InterestCategories)
	assert.Equal(t, "adult", got.AgeGroup)
	assert.Equal(t, 8, got.EducationLevel)
	assert.Equal(t, analysis.SocialScore, got.SocialScore)
}
