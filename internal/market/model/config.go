package model

import "time"

// ================ Config ================
type GeminiConfig struct {
	// Empty APIKey leaves vision, moderation and embeddings unavailable; each
	// falls back to its documented substitute.
	APIKey          string        `envconfig:"GEMINI_API_KEY"`
	BaseURL         string        `envconfig:"GEMINI_BASE_URL"`
	VisionModel     string        `envconfig:"VISION_MODEL" default:"gemini-2.5-flash"`
	ModerationModel string        `envconfig:"MODERATION_MODEL" default:"gemini-2.5-flash-lite"`
	EmbeddingModel  string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	MaxTokens       int           `envconfig:"MODERATION_MAX_TOKENS" default:"512"`
	Temperature     float32       `envconfig:"MODERATION_TEMPERATURE" default:"0"`
	Timeout         time.Duration `envconfig:"GEMINI_TIMEOUT" default:"5s"`
}

func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

type SearchConfig struct {
	APIKey   string        `envconfig:"GOOGLE_CLOUD_API_KEY"`
	EngineID string        `envconfig:"SEARCH_ENGINE_ID"`
	Endpoint string        `envconfig:"SEARCH_ENDPOINT"`
	Timeout  time.Duration `envconfig:"SEARCH_TIMEOUT" default:"5s"`
	CacheTTL time.Duration `envconfig:"COMPETITOR_CACHE_TTL" default:"30m"`
}

func (c SearchConfig) Enabled() bool {
	return c.APIKey != "" && c.EngineID != ""
}

type BreakerConfig struct {
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	OpenTimeout      time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
	Interval         time.Duration `envconfig:"BREAKER_INTERVAL" default:"1m"`
	HalfOpenRequests uint32        `envconfig:"BREAKER_HALF_OPEN_REQUESTS" default:"1"`
}

type AmbassadorConfig struct {
	MaxLiveTargets int           `envconfig:"AMBASSADOR_MAX_LIVE_TARGETS" default:"3"`
	ScrapeInterval time.Duration `envconfig:"AMBASSADOR_SCRAPE_INTERVAL" default:"1s"`
	ScrapeTimeout  time.Duration `envconfig:"AMBASSADOR_SCRAPE_TIMEOUT" default:"5s"`
	MinMatch       float64       `envconfig:"AMBASSADOR_MIN_MATCH" default:"10"`
	TikTokBaseURL  string        `envconfig:"TIKTOK_BASE_URL" default:"https://www.tiktok.com"`
	InstaBaseURL   string        `envconfig:"INSTAGRAM_BASE_URL" default:"https://www.instagram.com"`
}

type StoreConfig struct {
	// DemandTTL <= 0 keeps demand snapshots until overwritten.
	DemandTTL    time.Duration `envconfig:"DEMAND_TTL" default:"0s"`
	HistoryLimit int           `envconfig:"ANALYSIS_HISTORY_LIMIT" default:"20"`
}
