// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "github.com/07Austs/talent2/internal/models"

type Input struct {
	CandidateID string                   `json:"candidateId"`
	JobID       string                   `json:"jobId"`
	Candidate   *models.CandidateProfile `json:"candidateProfile,omitempty"`
	Job         *models.JobPosting       `json:"jobPosting,omitempty"`
}

type Output struct {
	CandidateID string                `json:"candidateId"`
	JobID       string                `json:"jobId"`
	MatchScore  float64               `json:"matchScore"`
	Breakdown   models.MatchBreakdown `json:"breakdown"`
}
