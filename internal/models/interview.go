// internal/models/interview.go
package models

type Interview struct {
	ID              string `json:"id"`
	ApplicationID   string `json:"applicationId"`
	RecruiterID     string `json:"recruiterId"`
	CandidateID     string `json:"candidateId"`
	ScheduledAt     string `json:"scheduledAt"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"` // "scheduled", "in_progress", "completed", "cancelled"
	MeetingURL      string `json:"meetingUrl,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

// Integrity event severities and the per-severity penalty weights.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Event types emitted by the interview client during a live session.
const (
	EventPasteBurst              = "paste_burst"
	EventSuddenCodeDelta         = "sudden_code_delta"
	EventTabSwitch               = "tab_switch"
	EventSurpriseQuestionTimeout = "surprise_question_timeout"
	EventExplanationWithoutCode  = "explanation_without_code"
)

type IntegrityEvent struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type IntegrityFlag struct {
	EventType string `json:"eventType"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

type IntegrityEvaluation struct {
	SessionID   string          `json:"sessionId"`
	Score       float64         `json:"score"`
	Verdict     string          `json:"verdict"` // "clean", "review", "suspect"
	HighCount   int             `json:"highCount"`
	MediumCount int             `json:"mediumCount"`
	LowCount    int             `json:"lowCount"`
	Flags       []IntegrityFlag `json:"flags"`
	EvaluatedAt string          `json:"evaluatedAt"`
}

type SurpriseQuestion struct {
	ID            string `json:"id"`
	InterviewID   string `json:"interviewId"`
	Question      string `json:"question"`
	Topic         string `json:"topic,omitempty"`
	TimeLimitSecs int    `json:"timeLimitSeconds"`
	GeneratedBy   string `json:"generatedBy,omitempty"`
	CreatedAt     string `json:"createdAt"`
}
