// internal/workers/interview/generate-surprise-question/models.go
package generatesurprisequestion

import "github.com/07Austs/talent2/internal/models"

type Input struct {
	InterviewID string   `json:"interviewId"`
	Topic       string   `json:"topic,omitempty"`
	JobSkills   []string `json:"jobSkills,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"` // "junior", "mid", "senior"
}

type Output struct {
	Question models.SurpriseQuestion `json:"question"`
}
