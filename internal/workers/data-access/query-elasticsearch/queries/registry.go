// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, input map[string]interface{}) (*QueryResult, error) {
	sq := SearchQuery{
		Pagination: struct{ From, Size int }{0, 20},
	}
	if index, ok := input["indexName"].(string); ok {
		sq.Index = index
	}
	if queryType, ok := input["queryType"].(string); ok {
		sq.QueryType = queryType
	}
	if filters, ok := input["filters"].(map[string]interface{}); ok {
		sq.Filters = filters
	} else {
		sq.Filters = map[string]interface{}{}
	}
	if jobID, ok := input["jobId"].(string); ok {
		sq.JobID = jobID
	}
	if pagination, ok := input["pagination"].(map[string]interface{}); ok {
		if from, exists := pagination["from"].(float64); exists {
			sq.Pagination.From = int(from)
		}
		if size, exists := pagination["size"].(float64); exists {
			sq.Pagination.Size = int(size)
			if sq.Pagination.Size > 100 {
				sq.Pagination.Size = 100
			}
			if sq.Pagination.Size < 1 {
				sq.Pagination.Size = 20
			}
		}
	}

	req, err := BuildQuery(esClient, sq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	return parseSearchResponse(r, time.Since(start).Milliseconds()), nil
}

func parseSearchResponse(r map[string]interface{}, took int64) *QueryResult {
	result := &QueryResult{Took: took}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return result
	}

	if total, ok := hits["total"].(map[string]interface{}); ok {
		if value, ok := total["value"].(float64); ok {
			result.TotalHits = int64(value)
		}
	}
	if maxScore, ok := hits["max_score"].(float64); ok {
		result.MaxScore = maxScore
	}

	if hitList, ok := hits["hits"].([]interface{}); ok {
		for _, hit := range hitList {
			hitMap, ok := hit.(map[string]interface{})
			if !ok {
				continue
			}
			entry := map[string]interface{}{
				"id":     hitMap["_id"],
				"score":  hitMap["_score"],
				"source": hitMap["_source"],
			}
			// Relevance relative to the best hit, so consumers see
			// [0, 1] regardless of the index's raw scoring scale.
			if score, ok := hitMap["_score"].(float64); ok && result.MaxScore > 0 {
				entry["normalizedScore"] = score / result.MaxScore
			}
			result.Data = append(result.Data, entry)
		}
	}

	return result
}
