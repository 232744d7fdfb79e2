// internal/workers/interview/schedule-interview/models.go
package scheduleinterview

type Input struct {
	ApplicationID   string `json:"applicationId"`
	RecruiterID     string `json:"recruiterId"`
	CandidateID     string `json:"candidateId"`
	ScheduledAt     string `json:"scheduledAt"` // ISO 8601
	DurationMinutes int    `json:"durationMinutes"`
	MeetingURL      string `json:"meetingUrl,omitempty"`
}

type Output struct {
	InterviewID string `json:"interviewId"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduledAt"`
	CreatedAt   string `json:"createdAt"`
}
