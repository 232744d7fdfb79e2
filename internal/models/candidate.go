// internal/models/candidate.go
package models

type CandidateProfile struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Headline        string    `json:"headline,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Skills          []string  `json:"skills"`
	YearsExperience float64   `json:"yearsExperience"`
	Location        string    `json:"location,omitempty"`
	ResumeText      string    `json:"resumeText,omitempty"`
	Embedding       []float64 `json:"embedding,omitempty"`
	UpdatedAt       string    `json:"updatedAt"`
}

// ProfileText builds the text that gets embedded for matching. Skills and
// summary carry the signal; the resume text is appended when present.
func (p *CandidateProfile) ProfileText() string {
	text := p.Headline
	if p.Summary != "" {
		if text != "" {
			text += "\n"
		}
		text += p.Summary
	}
	for _, skill := range p.Skills {
		text += "\n" + skill
	}
	if p.ResumeText != "" {
		text += "\n" + p.ResumeText
	}
	return text
}
