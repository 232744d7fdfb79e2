// internal/models/matching.go
package models

// MatchBreakdown carries the components of a candidate-job match score.
// Score is the weighted combination clamped to [0, 1].
type MatchBreakdown struct {
	CosineSimilarity float64 `json:"cosineSimilarity"`
	SkillOverlap     float64 `json:"skillOverlap"`
	ExperienceRatio  float64 `json:"experienceRatio"`
	Score            float64 `json:"score"`
}

type RankedCandidate struct {
	CandidateID string  `json:"candidateId"`
	FullName    string  `json:"fullName,omitempty"`
	Headline    string  `json:"headline,omitempty"`
	MatchScore  float64 `json:"matchScore"`
	SearchScore float64 `json:"searchScore"`
	Freshness   float64 `json:"freshness"`
	FinalScore  float64 `json:"finalScore"`
}
