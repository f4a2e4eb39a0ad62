// internal/matching/features.go
// Feature extraction: turns raw profile fields into comparable values.

package matching

import (
	"strings"
)

type OccupationCategory string

const (
	OccupationTech          OccupationCategory = "tech"
	OccupationBusiness      OccupationCategory = "business"
	OccupationCreative      OccupationCategory = "creative"
	OccupationHealth        OccupationCategory = "health"
	OccupationEducation     OccupationCategory = "education"
	OccupationPublicService OccupationCategory = "public_service"
	OccupationAgriculture   OccupationCategory = "agriculture"
	OccupationManufacturing OccupationCategory = "manufacturing"
	OccupationService       OccupationCategory = "service"
	OccupationOther         OccupationCategory = "other"
)

type keywordCategory[T any] struct {
	category T
	keywords []string
}

// occupationCategories is evaluated in order; the first category with a
// keyword contained in the occupation wins.
var occupationCategories = []keywordCategory[OccupationCategory]{
	{OccupationTech, []string{
		"developer", "engineer", "programmer", "software", "tech", "it", "system", "network", "database",
		"web developer", "mobile developer", "full stack", "frontend", "backend", "devops", "cloud",
		"data scientist", "data analyst", "business intelligence", "machine learning", "ai", "artificial intelligence",
		"cybersecurity", "security analyst", "penetration tester", "ethical hacker",
		"quality assurance", "qa engineer", "tester", "automation",
		"ui designer", "ux designer", "product manager", "scrum master",
		"technical writer", "systems analyst", "it support", "helpdesk",
		"computer operator", "data entry", "mis", "erp", "crm",
	}},
	{OccupationBusiness, []string{
		"manager", "analyst", "consultant", "executive", "coordinator", "supervisor", "director", "ceo", "cfo", "coo",
		"team leader", "project manager", "operations manager", "general manager", "assistant manager",
		"sales", "marketing", "business development", "account executive", "relationship manager",
		"digital marketing", "seo", "sem", "social media", "content marketing", "brand manager",
		"accountant", "auditor", "cashier", "finance", "treasury", "tax", "budget", "investment",
		"financial analyst", "credit analyst", "loan officer", "insurance", "actuarial",
		"hr", "human resource", "recruitment", "talent acquisition", "training", "compensation",
		"employee relations", "organizational development", "payroll",
		"administrative officer", "executive officer", "assistant", "clerk", "receptionist",
		"customer service", "call center", "bpo", "outsourcing",
	}},
	{OccupationCreative, []string{
		"designer", "graphic designer", "web designer", "fashion designer", "interior designer",
		"architect", "urban planner", "landscape architect", "product designer",
		"artist", "illustrator", "animator", "visual effects", "motion graphics",
		"writer", "content writer", "copywriter", "editor", "proofreader",
		"journalist", "reporter", "correspondent", "news anchor", "broadcaster",
		"photographer", "videographer", "cinematographer", "video editor",
		"creative director", "art director", "brand designer",
		"cultural officer", "event organizer", "wedding planner", "decorator",
		"handicrafts", "traditional artist", "folk artist",
	}},
	{OccupationHealth, []string{
		"doctor", "physician", "surgeon", "neurosurgeon", "cardiologist", "pediatrician",
		"psychiatrist", "dermatologist", "orthopedic", "gynecologist", "urologist",
		"nurse", "nursing", "midwife", "paramedic", "medical assistant",
		"pharmacist", "pharmacy", "pharmaceutical", "clinical pharmacist",
		"therapist", "physiotherapist", "occupational therapist", "speech therapist",
		"psychologist", "counselor", "social worker", "mental health",
		"dentist", "dental", "orthodontist", "oral surgeon",
		"veterinarian", "veterinary", "animal health",
		"medical", "health", "healthcare", "public health", "epidemiologist",
		"medical technologist", "lab technician", "radiology", "pathologist",
		"medical officer", "health inspector", "family welfare", "community health",
		"traditional healer", "homeopathic", "ayurvedic", "unani",
	}},
	{OccupationEducation, []string{
		"teacher", "professor", "lecturer", "instructor", "tutor", "educator",
		"principal", "headmaster", "academic coordinator", "curriculum developer",
		"research", "researcher", "scientist", "scholar", "librarian",
		"training officer", "education officer", "academic advisor",
	}},
	{OccupationPublicService, []string{
		"government", "civil service", "public service", "administrative service",
		"bcs", "cadre", "magistrate", "commissioner", "secretary",
		"deputy commissioner", "upazila", "union parishad", "municipality",
		"lawyer", "advocate", "barrister", "solicitor", "legal advisor", "judge",
		"police", "detective", "security", "intelligence", "customs", "immigration",
		"army", "navy", "air force", "military", "defense", "coast guard",
		"ansar", "rab", "border guard", "fire service",
	}},
	{OccupationAgriculture, []string{
		"agriculture", "farming", "farmer", "agricultural officer", "agronomy",
		"fisheries", "fishery", "aquaculture", "livestock", "dairy",
		"forestry", "horticulture", "plant pathology", "soil science",
		"agricultural extension", "rural development", "cooperative",
	}},
	{OccupationManufacturing, []string{
		"garments", "textile", "apparel", "fashion", "merchandising",
		"quality controller", "production manager", "industrial engineer",
		"factory manager", "supervisor", "operator", "technician",
		"manufacturing", "production", "quality control", "maintenance",
		"mechanical", "electrical", "civil engineering", "chemical",
		"pharmaceuticals", "leather", "jute", "ceramic", "steel",
	}},
	{OccupationService, []string{
		"hotel", "restaurant", "tourism", "travel", "hospitality",
		"chef", "cook", "waiter", "bartender", "housekeeping",
		"tour guide", "travel agent", "event management",
		"driver", "transport", "logistics", "supply chain", "warehouse",
		"shipping", "freight", "courier", "delivery",
		"bank", "banking", "financial services", "microcredit", "ngo",
		"development", "social work", "community development",
	}},
}

// interestCategories feed the user-facing interest categorisation.
var interestCategories = []keywordCategory[string]{
	{"Technology", []string{"programming", "coding", "tech", "computers", "ai", "software"}},
	{"Sports", []string{"football", "basketball", "soccer", "tennis", "gym", "fitness"}},
	{"Arts", []string{"music", "painting", "drawing", "photography", "design", "art"}},
	{"Travel", []string{"travel", "adventure", "exploring", "tourism", "culture"}},
	{"Food", []string{"cooking", "baking", "food", "cuisine", "restaurants", "wine"}},
	{"Entertainment", []string{"movies", "tv", "gaming", "books", "reading", "netflix"}},
	{"Nature", []string{"hiking", "camping", "outdoors", "environment", "animals"}},
	{"Social", []string{"friends", "networking", "parties", "community", "volunteering"}},
}

// educationLevels is ordered from lowest to highest.
var educationLevels = []string{"high school", "bachelor", "master", "phd"}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// NormalizeInterests lower-cases and trims interests, dropping blanks and
// duplicates while keeping first-seen order.
func NormalizeInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		n := normalize(interest)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func interestSet(interests []string) map[string]struct{} {
	set := make(map[string]struct{}, len(interests))
	for _, interest := range NormalizeInterests(interests) {
		set[interest] = struct{}{}
	}
	return set
}

// LocationSegments splits a normalized location on commas.
func LocationSegments(location string) []string {
	parts := strings.Split(normalize(location), ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// LocationWords returns the space separated words of every segment that are
// longer than two characters.
func LocationWords(segments []string) []string {
	var words []string
	for _, seg := range segments {
		for _, w := range strings.Fields(seg) {
			if runeLen(w) > 2 {
				words = append(words, w)
			}
		}
	}
	return words
}

// ClassifyOccupation maps free text onto a fixed occupation category.
func ClassifyOccupation(occupation string) OccupationCategory {
	occ := normalize(occupation)
	if occ == "" {
		return OccupationOther
	}
	for _, c := range occupationCategories {
		if containsAny(occ, c.keywords) {
			return c.category
		}
	}
	return OccupationOther
}

// BioTokens is the lower-cased whitespace-split bag of words of a bio.
func BioTokens(bio string) []string {
	return strings.Fields(strings.ToLower(bio))
}

// CategorizeInterests lists the interest categories a user touches, in
// first-seen order.
func CategorizeInterests(interests []string) []string {
	categories := []string{}
	seen := make(map[string]struct{})
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		for _, c := range interestCategories {
			if _, ok := seen[c.category]; ok {
				continue
			}
			if containsAny(lower, c.keywords) {
				seen[c.category] = struct{}{}
				categories = append(categories, c.category)
			}
		}
	}
	return categories
}

func AgeGroup(age *int) string {
	if age == nil || *age <= 0 {
		return "unknown"
	}
	switch a := *age; {
	case a < 25:
		return "young_adult"
	case a < 35:
		return "adult"
	case a < 50:
		return "middle_age"
	default:
		return "senior"
	}
}

// EducationLevel scores an education string on a 3-10 scale; absent is 5.
func EducationLevel(education string) int {
	edu := normalize(education)
	switch {
	case edu == "":
		return 5
	case strings.Contains(edu, "phd") || strings.Contains(edu, "doctorate"):
		return 10
	case strings.Contains(edu, "master"):
		return 8
	case strings.Contains(edu, "bachelor") || strings.Contains(edu, "degree"):
		return 6
	case strings.Contains(edu, "college") || strings.Contains(edu, "university"):
		return 5
	}
	return 3
}

// educationIndex returns the position in educationLevels or -1.
func educationIndex(education string) int {
	edu := normalize(education)
	for i, level := range educationLevels {
		if strings.Contains(edu, level) {
			return i
		}
	}
	return -1
}

func ExtractFeatures(p *Profile, analysis PersonalityAnalysis) ProfileFeatures {
	return ProfileFeatures{
		InterestCategories: CategorizeInterests(p.Interests),
		AgeGroup:           AgeGroup(p.Age),
		EducationLevel:     EducationLevel(p.Education),
		SocialScore:        analysis.SocialScore,
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
