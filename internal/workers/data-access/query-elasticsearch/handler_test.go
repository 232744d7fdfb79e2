// internal/workers/data-access/query-elasticsearch/handler_test.go
package queryelasticsearch

import (
	"context"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/07Austs/talent2/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// Connects to a local Elasticsearch container; skips when unavailable.
func createElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), nil)

	assert.Error(t, err)
}

func TestHandler_Execute_MissingIndex(t *testing.T) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	})
	require.NoError(t, err)

	handler := NewHandler(createTestConfig(), esClient, logger.NewTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{
		QueryType: "candidate_search",
	})

	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestHandler_Execute_UnknownQueryType(t *testing.T) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	})
	require.NoError(t, err)

	handler := NewHandler(createTestConfig(), esClient, logger.NewTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{
		IndexName: "candidates",
		QueryType: "fuzzy_vibes",
	})

	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestHandler_Execute_CandidateSearch(t *testing.T) {
	esClient := createElasticsearchClient(t)

	handler := NewHandler(createTestConfig(), esClient, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		IndexName: "candidates",
		QueryType: "candidate_search",
		Filters: map[string]interface{}{
			"keywords": "golang",
		},
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, output.TotalHits, int64(0))
}
