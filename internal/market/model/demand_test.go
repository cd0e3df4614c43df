package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Trend
	}{
		{10, TrendDownward},
		{39, TrendDownward},
		{40, TrendStable},
		{50, TrendStable},
		{60, TrendStable},
		{61, TrendUpward},
		{99, TrendUpward},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrendForScore(tt.score), "score %d", tt.score)
	}
}

func TestDefaultVisualMatch(t *testing.T) {
	m := DefaultVisualMatch()
	assert.Equal(t, 0.85, m.Confidence)
	assert.Equal(t, DetectedLabel, m.Label)
	assert.NotNil(t, m.Entities)
	assert.Empty(t, m.Entities)
}
