// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

type Input struct {
	QueryType   string                 `json:"queryType"`
	CandidateID string                 `json:"candidateId,omitempty"`
	JobID       string                 `json:"jobId,omitempty"`
	RecruiterID string                 `json:"recruiterId,omitempty"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
