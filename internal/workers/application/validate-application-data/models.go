// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

type Input struct {
	CandidateID     string                 `json:"candidateId"`
	JobID           string                 `json:"jobId"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Output struct {
	IsValid          bool                   `json:"isValid"`
	ValidatedData    map[string]interface{} `json:"validatedData"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
