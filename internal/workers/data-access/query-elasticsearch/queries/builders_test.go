// internal/workers/data-access/query-elasticsearch/queries/builders_test.go
package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

func TestBuildQuery_MissingIndex(t *testing.T) {
	_, err := BuildQuery(nil, SearchQuery{QueryType: "candidate_search"})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildQuery_UnknownQueryType(t *testing.T) {
	_, err := BuildQuery(nil, SearchQuery{Index: "candidates", QueryType: "fuzzy_vibes"})
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestBuildQuery_CandidateSearchWithKeywords(t *testing.T) {
	sq := SearchQuery{
		Index:     "candidates",
		QueryType: "candidate_search",
		Filters: map[string]interface{}{
			"keywords": "golang backend",
			"skills":   []interface{}{"Go", "PostgreSQL"},
			"location": "Berlin",
		},
	}
	sq.Pagination.Size = 10

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)
	assert.Equal(t, []string{"candidates"}, req.Index)

	body := decodeBody(t, req.Body)
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "golang backend", multiMatch["query"])

	filters := boolQuery["filter"].([]interface{})
	assert.Len(t, filters, 2)
}

func TestBuildQuery_CandidateSearchNoKeywordsMatchesAll(t *testing.T) {
	sq := SearchQuery{
		Index:     "candidates",
		QueryType: "candidate_search",
		Filters:   map[string]interface{}{},
	}

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	must := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
}

func TestBuildQuery_CandidateSearchExperienceFilter(t *testing.T) {
	sq := SearchQuery{
		Index:     "candidates",
		QueryType: "candidate_search",
		Filters: map[string]interface{}{
			"minYearsExperience": 3.0,
		},
	}

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 1)
	rangeFilter := filters[0].(map[string]interface{})["range"].(map[string]interface{})["years_experience"].(map[string]interface{})
	assert.Equal(t, 3.0, rangeFilter["gte"])
}

func TestBuildQuery_JobSearchFiltersOpenPostings(t *testing.T) {
	sq := SearchQuery{
		Index:     "jobs",
		QueryType: "job_search",
		Filters: map[string]interface{}{
			"keywords": "site reliability",
		},
	}

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.NotEmpty(t, filters)
	statusTerm := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "open", statusTerm["status"])
}

func TestBuildQuery_JobSearchLocationIncludesRemote(t *testing.T) {
	sq := SearchQuery{
		Index:     "jobs",
		QueryType: "job_search",
		Filters: map[string]interface{}{
			"location": "Berlin",
		},
	}

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 2)

	locationBool := filters[1].(map[string]interface{})["bool"].(map[string]interface{})
	should := locationBool["should"].([]interface{})
	assert.Len(t, should, 2)
}

func TestParseSearchResponse_NormalizesScores(t *testing.T) {
	response := map[string]interface{}{
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": 2.0},
			"max_score": 8.0,
			"hits": []interface{}{
				map[string]interface{}{"_id": "cand-1", "_score": 8.0, "_source": map[string]interface{}{}},
				map[string]interface{}{"_id": "cand-2", "_score": 2.0, "_source": map[string]interface{}{}},
			},
		},
	}

	result := parseSearchResponse(response, 12)

	require.Len(t, result.Data, 2)
	assert.Equal(t, int64(2), result.TotalHits)
	assert.Equal(t, 8.0, result.MaxScore)
	assert.Equal(t, int64(12), result.Took)
	assert.Equal(t, 1.0, result.Data[0]["normalizedScore"])
	assert.Equal(t, 0.25, result.Data[1]["normalizedScore"])
	assert.Equal(t, 2.0, result.Data[1]["score"])
}

func TestParseSearchResponse_NoHits(t *testing.T) {
	result := parseSearchResponse(map[string]interface{}{}, 3)

	assert.Empty(t, result.Data)
	assert.Zero(t, result.TotalHits)
	assert.Equal(t, int64(3), result.Took)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
		ok       bool
	}{
		{"float64", 2.5, 2.5, true},
		{"int", 3, 3.0, true},
		{"int64", int64(4), 4.0, true},
		{"string", "5", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toFloat(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
