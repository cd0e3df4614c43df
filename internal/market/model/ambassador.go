package model

// InfluencerProfile is a scraped or fallback social profile.
type InfluencerProfile struct {
	Handle    string
	Platform  string
	Bio       string
	Followers int64
	// Text is what gets embedded for similarity matching.
	Text string
}

// AmbassadorMatch is a ranked influencer suggestion.
type AmbassadorMatch struct {
	Handle     string  `json:"handle"`
	Platform   string  `json:"platform"`
	Followers  string  `json:"followers"`
	BioSnippet string  `json:"bio_snippet"`
	MatchScore float64 `json:"match_score"`
}
