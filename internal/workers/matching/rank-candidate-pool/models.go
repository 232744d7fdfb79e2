// internal/workers/matching/rank-candidate-pool/models.go
package rankcandidatepool

import "github.com/07Austs/talent2/internal/models"

type Input struct {
	JobID      string          `json:"jobId"`
	Candidates []PoolCandidate `json:"candidates"`
	TopN       int             `json:"topN,omitempty"`
}

type PoolCandidate struct {
	CandidateID string  `json:"candidateId"`
	FullName    string  `json:"fullName,omitempty"`
	Headline    string  `json:"headline,omitempty"`
	MatchScore  float64 `json:"matchScore"`
	SearchScore float64 `json:"searchScore"` // Elasticsearch _score
	UpdatedAt   string  `json:"updatedAt"`   // ISO 8601
}

type Output struct {
	JobID            string                   `json:"jobId"`
	RankedCandidates []models.RankedCandidate `json:"rankedCandidates"`
	TotalEvaluated   int                      `json:"totalEvaluated"`
}
