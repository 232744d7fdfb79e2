// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	CandidateID     string                 `json:"candidateId"`
	JobID           string                 `json:"jobId"`
	ApplicationData map[string]interface{} `json:"applicationData"`
	MatchScore      float64                `json:"matchScore"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"`
}
