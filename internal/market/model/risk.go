package model

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskAssessment is the moderation verdict for a piece of text.
type RiskAssessment struct {
	RiskLevel         RiskLevel `json:"risk_level"`
	Confidence        int       `json:"confidence"`
	RecommendedAction string    `json:"recommended_action"`
	Degraded          bool      `json:"degraded"`
}
