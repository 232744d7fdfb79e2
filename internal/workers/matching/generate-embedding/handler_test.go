// internal/workers/matching/generate-embedding/handler_test.go
package generateembedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, len(texts))
	for i := range texts {
		v, err := f.EmbedText(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createTestConfig() *Config {
	return &Config{
		CacheTTL: time.Hour,
		Timeout:  5 * time.Second,
	}
}

func TestHandler_Execute_GeneratesEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	handler := NewHandler(createTestConfig(), nil, setupRedis(t), embedder, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		EntityType: EntityTypeCandidate,
		EntityID:   "cand-1",
		Text:       "senior go engineer",
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, output.Embedding)
	assert.Equal(t, 3, output.Dimensions)
	assert.False(t, output.Cached)
	assert.Equal(t, 1, embedder.calls)
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0.5, 0.5}}
	handler := NewHandler(createTestConfig(), nil, setupRedis(t), embedder, logger.NewTestLogger(t))

	input := &Input{
		EntityType: EntityTypeJob,
		EntityID:   "job-1",
		Text:       "backend engineer posting",
	}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Embedding, second.Embedding)
	assert.Equal(t, 1, embedder.calls)
}

func TestHandler_Execute_EmptyInput(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0.1}}
	handler := NewHandler(createTestConfig(), nil, setupRedis(t), embedder, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		EntityType: EntityTypeCandidate,
		EntityID:   "",
		Text:       "",
	})

	assert.ErrorIs(t, err, ErrEmbeddingInputEmpty)
	assert.Equal(t, 0, embedder.calls)
}

func TestHandler_Execute_UnknownEntityType(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, setupRedis(t), &fakeEmbedder{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		EntityType: "recruiter",
		Text:       "some text",
	})

	assert.ErrorIs(t, err, ErrEmbeddingInputEmpty)
}

func TestHandler_Execute_EmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("upstream unavailable")}
	handler := NewHandler(createTestConfig(), nil, setupRedis(t), embedder, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		EntityType: EntityTypeCandidate,
		Text:       "some text",
	})

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestHandler_Execute_LoadsCandidateProfileText(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM candidate_profiles").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"headline", "summary", "skills", "resume_text"}).
			AddRow("Senior Go Engineer", "Builds distributed systems.", []byte(`["go","sql"]`), ""))
	mock.ExpectExec("UPDATE candidate_profiles").
		WillReturnResult(sqlmock.NewResult(0, 1))

	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2}}
	handler := NewHandler(createTestConfig(), db, setupRedis(t), embedder, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		EntityType: EntityTypeCandidate,
		EntityID:   "cand-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Dimensions)
	assert.Equal(t, 1, embedder.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_LoadsJobPostingText(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM job_postings").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "description", "required_skills"}).
			AddRow("Backend Engineer", "Build recruiting workflows.", []byte(`["go"]`)))
	mock.ExpectExec("UPDATE job_postings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	embedder := &fakeEmbedder{vector: []float64{0.3, 0.4}}
	handler := NewHandler(createTestConfig(), db, setupRedis(t), embedder, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		EntityType: EntityTypeJob,
		EntityID:   "job-1",
	})

	require.NoError(t, err)
	assert.False(t, output.Cached)
	assert.Equal(t, 1, embedder.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingCacheKey_VariesWithText(t *testing.T) {
	a := embeddingCacheKey("candidate", "cand-1", "text one")
	b := embeddingCacheKey("candidate", "cand-1", "text two")
	assert.NotEqual(t, a, b)
}
