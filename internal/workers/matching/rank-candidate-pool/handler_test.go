// internal/workers/matching/rank-candidate-pool/handler_test.go
package rankcandidatepool

import (
	"context"
	"testing"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		MaxItems: 100,
		Timeout:  5 * time.Second,
	}
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), logger.NewTestLogger(t))
}

func recentTimestamp() string {
	return time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
}

func TestHandler_Execute_SortsByFinalScore(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		JobID: "job-1",
		Candidates: []PoolCandidate{
			{CandidateID: "low", MatchScore: 0.2, SearchScore: 1, UpdatedAt: recentTimestamp()},
			{CandidateID: "high", MatchScore: 0.9, SearchScore: 8, UpdatedAt: recentTimestamp()},
			{CandidateID: "mid", MatchScore: 0.5, SearchScore: 4, UpdatedAt: recentTimestamp()},
		},
	})

	require.NoError(t, err)
	require.Len(t, output.RankedCandidates, 3)
	assert.Equal(t, "high", output.RankedCandidates[0].CandidateID)
	assert.Equal(t, "mid", output.RankedCandidates[1].CandidateID)
	assert.Equal(t, "low", output.RankedCandidates[2].CandidateID)
	assert.Equal(t, 3, output.TotalEvaluated)
}

func TestHandler_Execute_DeduplicatesCandidates(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		JobID: "job-1",
		Candidates: []PoolCandidate{
			{CandidateID: "dup", MatchScore: 0.3, SearchScore: 2},
			{CandidateID: "dup", MatchScore: 0.8, SearchScore: 5},
			{CandidateID: "other", MatchScore: 0.4, SearchScore: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, output.RankedCandidates, 2)
	assert.Equal(t, "dup", output.RankedCandidates[0].CandidateID)
	// Higher-scoring duplicate wins
	assert.InDelta(t, 0.8, output.RankedCandidates[0].MatchScore, 1e-9)
}

func TestHandler_Execute_RespectsTopN(t *testing.T) {
	handler := newTestHandler(t)

	candidates := make([]PoolCandidate, 10)
	for i := range candidates {
		candidates[i] = PoolCandidate{
			CandidateID: string(rune('a' + i)),
			MatchScore:  float64(i) / 10,
		}
	}

	output, err := handler.Execute(context.Background(), &Input{
		JobID:      "job-1",
		Candidates: candidates,
		TopN:       3,
	})

	require.NoError(t, err)
	assert.Len(t, output.RankedCandidates, 3)
	assert.Equal(t, 10, output.TotalEvaluated)
}

func TestHandler_Execute_CapsAtMaxItems(t *testing.T) {
	handler := NewHandler(&Config{MaxItems: 5, Timeout: time.Second}, logger.NewTestLogger(t))

	candidates := make([]PoolCandidate, 20)
	for i := range candidates {
		candidates[i] = PoolCandidate{CandidateID: string(rune('a' + i)), MatchScore: 0.5}
	}

	output, err := handler.Execute(context.Background(), &Input{Candidates: candidates})

	require.NoError(t, err)
	assert.Len(t, output.RankedCandidates, 5)
}

func TestHandler_Execute_SkipsEmptyIDs(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Candidates: []PoolCandidate{
			{CandidateID: "", MatchScore: 0.9},
			{CandidateID: "valid", MatchScore: 0.5},
		},
	})

	require.NoError(t, err)
	assert.Len(t, output.RankedCandidates, 1)
	assert.Equal(t, "valid", output.RankedCandidates[0].CandidateID)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNilInput)
}

func TestNormalizeSearchScore(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected float64
	}{
		{"zero", 0, 0},
		{"negative clamps to zero", -3, 0},
		{"mid range", 5, 0.5},
		{"at ceiling", 10, 1},
		{"above ceiling clamps", 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, normalizeSearchScore(tt.score), 1e-9)
		})
	}
}

func TestFreshnessScore(t *testing.T) {
	handler := newTestHandler(t)

	assert.Equal(t, 0.0, handler.freshnessScore(""))
	assert.Equal(t, 0.0, handler.freshnessScore("not-a-timestamp"))

	fresh := handler.freshnessScore(time.Now().UTC().Format(time.RFC3339))
	assert.InDelta(t, 1.0, fresh, 0.01)

	stale := handler.freshnessScore(time.Now().UTC().Add(-100 * 24 * time.Hour).Format(time.RFC3339))
	assert.Equal(t, 0.0, stale)

	mid := handler.freshnessScore(time.Now().UTC().Add(-45 * 24 * time.Hour).Format(time.RFC3339))
	assert.InDelta(t, 0.5, mid, 0.01)
}
