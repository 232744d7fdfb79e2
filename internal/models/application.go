// internal/models/application.go
package models

type Application struct {
	ID          string                 `json:"id"`
	CandidateID string                 `json:"candidateId"`
	JobID       string                 `json:"jobId"`
	Status      string                 `json:"status"` // "submitted", "screening", "interview", "offer", "rejected"
	MatchScore  float64                `json:"matchScore"`
	CoverLetter string                 `json:"coverLetter,omitempty"`
	Answers     map[string]interface{} `json:"answers,omitempty"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
}

