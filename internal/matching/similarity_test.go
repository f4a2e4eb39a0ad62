package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestInterestSimilarity(t *testing.T) {
	t.Run("jaccard", func(t *testing.T) {
		got := InterestSimilarity([]string{"music", "travel"}, []string{"music", "hiking"})
		assert.InDelta(t, 1.0/3.0, got, 1e-9)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		got := InterestSimilarity([]string{" Music", "TRAVEL"}, []string{"music", "travel "})
		assert.Equal(t, 1.0, got)
	})

	t.Run("empty side", func(t *testing.T) {
		assert.Equal(t, 0.0, InterestSimilarity(nil, []string{"music"}))
		assert.Equal(t, 0.0, InterestSimilarity([]string{"music"}, []string{}))
		assert.Equal(t, 0.0, InterestSimilarity([]string{"  "}, []string{"music"}))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := []string{"music", "travel", "coding"}
		b := []string{"coding", "gym"}
		assert.Equal(t, InterestSimilarity(a, b), InterestSimilarity(b, a))
	})

	t.Run("self match", func(t *testing.T) {
		a := []string{"music", "travel", "music"}
		assert.Equal(t, 1.0, InterestSimilarity(a, a))
	})
}

func TestSharedInterests(t *testing.T) {
	got := SharedInterests([]string{"Travel", "music", "coding", "MUSIC"}, []string{"music", "travel", "gym"})
	assert.Equal(t, []string{"Travel", "music"}, got)

	assert.Empty(t, SharedInterests(nil, []string{"music"}))
	assert.NotNil(t, SharedInterests(nil, nil))
}

func TestLocationSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"absent", "Dhaka", "", 0.2},
		{"both absent", "", "   ", 0.2},
		{"exact", "Dhaka", " DHAKA ", 1.0},
		{"segment contains", "Dhaka, Dhanmondi", "dhaka", 0.6},
		{"shared segment", "Gulshan, Dhaka", "Banani, Dhaka", 0.6},
		{"shared word", "New York City", "York Town", 0.6},
		{"three char prefix", "Chittagong", "Chittaranjan", 0.4},
		{"no match", "Sylhet", "Rajshahi", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationSimilarity(tt.a, tt.b))
			assert.Equal(t, tt.want, LocationSimilarity(tt.b, tt.a))
		})
	}
}

func TestSameArea(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Lagos, Nigeria", "lagos, nigeria ", true},
		{"Ikeja, Lagos", "Lagos", true},
		{"Abuja, Nigeria", "Lagos, Nigeria", true},
		{"London, UK", "Lagos, Nigeria", false},
		{"New York", "York", false},
		{"", "Lagos", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SameArea(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, SameArea(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestAgeCompatibility(t *testing.T) {
	assert.Equal(t, 1.0, AgeCompatibility(intPtr(30), intPtr(32)))
	assert.Equal(t, 0.8, AgeCompatibility(intPtr(30), intPtr(35)))
	assert.Equal(t, 0.6, AgeCompatibility(intPtr(30), intPtr(40)))
	assert.Equal(t, 0.3, AgeCompatibility(intPtr(30), intPtr(41)))
	assert.Equal(t, 1.0, AgeCompatibility(intPtr(27), intPtr(27)))

	assert.Equal(t, 0.5, AgeCompatibility(nil, intPtr(30)))
	assert.Equal(t, 0.5, AgeCompatibility(intPtr(-4), intPtr(30)))

	for d := 0; d < 20; d++ {
		assert.Equal(t, AgeCompatibility(intPtr(30), intPtr(30+d)), AgeCompatibility(intPtr(30+d), intPtr(30)))
		if d > 0 {
			assert.LessOrEqual(t, AgeCompatibility(intPtr(30), intPtr(30+d)), AgeCompatibility(intPtr(30), intPtr(30+d-1)))
		}
	}
}

func TestOccupationSimilarity(t *testing.T) {
	assert.Equal(t, 0.3, OccupationSimilarity("", ""))
	assert.Equal(t, 0.3, OccupationSimilarity("Teacher", ""))
	assert.Equal(t, 1.0, OccupationSimilarity("Teacher", "teacher"))
	assert.Equal(t, 0.7, OccupationSimilarity("Software Engineer", "Data Scientist"))
	assert.Equal(t, 0.2, OccupationSimilarity("Nurse", "Farmer"))
}

func TestBioSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, BioSimilarity("", "I love music"))
	assert.Equal(t, 0.0, BioSimilarity("I love music", "   "))
	assert.Equal(t, 1.0, BioSimilarity("love music and travel", "love music and travel"))

	// "love music" vs "love hiking": overlap 1, distinct union 3
	assert.InDelta(t, 1.0/3.0, BioSimilarity("love music", "love hiking"), 1e-9)
	assert.Equal(t, BioSimilarity("love music", "love hiking"), BioSimilarity("love hiking", "love music"))

	// repeated words would exceed 1 without the cap
	assert.Equal(t, 1.0, BioSimilarity("hello hello world", "hello hello world"))
}

func TestPersonalityCompatibility(t *testing.T) {
	v := &PersonalityVector{Openness: 7, Conscientiousness: 6, Extraversion: 4, Agreeableness: 8, Neuroticism: 3}

	assert.Equal(t, 50, PersonalityCompatibility(nil, v))
	assert.Equal(t, 50, PersonalityCompatibility(v, nil))
	assert.Equal(t, 100, PersonalityCompatibility(v, v))

	// zero traits count as 5, so an empty vector equals an all-fives one
	five := &PersonalityVector{Openness: 5, Conscientiousness: 5, Extraversion: 5, Agreeableness: 5, Neuroticism: 5}
	assert.Equal(t, 100, PersonalityCompatibility(&PersonalityVector{}, five))

	far := &PersonalityVector{Openness: 10, Conscientiousness: 1, Extraversion: 10, Agreeableness: 1, Neuroticism: 10}
	got := PersonalityCompatibility(v, far)
	assert.GreaterOrEqual(t, got, 0)
	assert.Less(t, got, 100)
}
