// internal/models/job.go
package models

type JobPosting struct {
	ID             string    `json:"id"`
	RecruiterID    string    `json:"recruiterId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"requiredSkills"`
	RequiredYears  float64   `json:"requiredYears"`
	Location       string    `json:"location,omitempty"`
	Remote         bool      `json:"remote,omitempty"`
	Status         string    `json:"status"` // "open", "paused", "closed"
	Embedding      []float64 `json:"embedding,omitempty"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// JobText builds the text that gets embedded for matching.
func (j *JobPosting) JobText() string {
	text := j.Title
	if j.Description != "" {
		text += "\n" + j.Description
	}
	for _, skill := range j.RequiredSkills {
		text += "\n" + skill
	}
	return text
}
