// internal/workers/interview/evaluate-session-integrity/models.go
package evaluatesessionintegrity

import "github.com/07Austs/talent2/internal/models"

type Input struct {
	SessionID string                  `json:"sessionId"`
	Events    []models.IntegrityEvent `json:"events"`
}

type Output struct {
	SessionID      string                 `json:"sessionId"`
	IntegrityScore float64                `json:"integrityScore"`
	Verdict        string                 `json:"verdict"`
	HighCount      int                    `json:"highCount"`
	MediumCount    int                    `json:"mediumCount"`
	LowCount       int                    `json:"lowCount"`
	Flags          []models.IntegrityFlag `json:"flags"`
	EvaluatedAt    string                 `json:"evaluatedAt"`
}
