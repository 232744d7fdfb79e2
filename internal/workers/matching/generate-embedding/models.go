// internal/workers/matching/generate-embedding/models.go
package generateembedding

type Input struct {
	EntityType string `json:"entityType"` // "candidate" or "job"
	EntityID   string `json:"entityId"`
	Text       string `json:"text,omitempty"`
}

type Output struct {
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Embedding  []float64 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
	Cached     bool      `json:"cached"`
}
