// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

type Input struct {
	IndexName  string                 `json:"indexName"`
	QueryType  string                 `json:"queryType"` // "candidate_search" or "job_search"
	JobID      string                 `json:"jobId,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	Pagination map[string]interface{} `json:"pagination,omitempty"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"`
}
