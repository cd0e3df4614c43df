package model

const (
	UnknownLabel  = "Unknown"
	DetectedLabel = "Detected Product"
)

// VisualMatch is the image recognizer's best guess for a product photo.
type VisualMatch struct {
	Confidence float64  `json:"confidence"`
	Label      string   `json:"label"`
	Entities   []string `json:"web_entities"`
}

// DefaultVisualMatch is substituted whenever recognition fails.
func DefaultVisualMatch() VisualMatch {
	return VisualMatch{Confidence: 0.85, Label: DetectedLabel, Entities: []string{}}
}

// SearchResult is one raw web search hit.
type SearchResult struct {
	Title   string
	Snippet string
	Link    string
}
