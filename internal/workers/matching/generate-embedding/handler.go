// internal/workers/matching/generate-embedding/handler.go
package generateembedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/07Austs/talent2/internal/common/ai"
	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/common/metrics"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "generate-embedding"

	EntityTypeCandidate = "candidate"
	EntityTypeJob       = "job"
)

var (
	ErrEmbeddingInputEmpty = errors.New("EMBEDDING_INPUT_EMPTY")
	ErrEmbeddingFailed     = errors.New("EMBEDDING_FAILED")
	ErrEmbeddingTimeout    = errors.New("EMBEDDING_TIMEOUT")
)

type Handler struct {
	config   *Config
	db       *sql.DB
	redis    *redis.Client
	embedder ai.Embedder
	logger   logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, embedder ai.Embedder, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		db:       db,
		redis:    rdb,
		embedder: embedder,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "EMBEDDING_FAILED"
		retries := int32(3)
		if errors.Is(err, ErrEmbeddingInputEmpty) {
			errorCode = "EMBEDDING_INPUT_EMPTY"
			retries = 0
		} else if errors.Is(err, ErrEmbeddingTimeout) {
			errorCode = "EMBEDDING_TIMEOUT"
			retries = 2
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.EntityType != EntityTypeCandidate && input.EntityType != EntityTypeJob {
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrEmbeddingInputEmpty, input.EntityType)
	}

	text := input.Text
	if text == "" && input.EntityID != "" {
		var err error
		text, err = h.loadEntityText(ctx, input.EntityType, input.EntityID)
		if err != nil {
			h.logger.Warn("failed to load entity text", map[string]interface{}{
				"entityType": input.EntityType,
				"entityId":   input.EntityID,
				"error":      err,
			})
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text for %s %s", ErrEmbeddingInputEmpty, input.EntityType, input.EntityID)
	}

	cacheKey := embeddingCacheKey(input.EntityType, input.EntityID, text)
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var embedding []float64
		if err := json.Unmarshal([]byte(val), &embedding); err == nil && len(embedding) > 0 {
			metrics.EmbeddingCacheHits.WithLabelValues("hit").Inc()
			return &Output{
				EntityType: input.EntityType,
				EntityID:   input.EntityID,
				Embedding:  embedding,
				Dimensions: len(embedding),
				Cached:     true,
			}, nil
		}
	}
	metrics.EmbeddingCacheHits.WithLabelValues("miss").Inc()

	embedding, err := h.embedder.EmbedText(ctx, text)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector returned", ErrEmbeddingFailed)
	}

	if data, err := json.Marshal(embedding); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	if input.EntityID != "" {
		h.persistEmbedding(ctx, input.EntityType, input.EntityID, embedding)
	}

	h.logger.Info("embedding generated", map[string]interface{}{
		"entityType": input.EntityType,
		"entityId":   input.EntityID,
		"dimensions": len(embedding),
	})

	return &Output{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Embedding:  embedding,
		Dimensions: len(embedding),
		Cached:     false,
	}, nil
}

func (h *Handler) loadEntityText(ctx context.Context, entityType, entityID string) (string, error) {
	if entityType == EntityTypeCandidate {
		var profile models.CandidateProfile
		var skillsJSON []byte
		err := h.db.QueryRowContext(ctx, `
			SELECT coalesce(headline, ''), coalesce(summary, ''), skills, coalesce(resume_text, '')
			FROM candidate_profiles WHERE id = $1`, entityID).Scan(
			&profile.Headline, &profile.Summary, &skillsJSON, &profile.ResumeText,
		)
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(skillsJSON, &profile.Skills); err != nil {
			h.logger.Warn("failed to parse candidate skills", map[string]interface{}{
				"entityId": entityID,
				"error":    err,
			})
		}
		return profile.ProfileText(), nil
	}

	var posting models.JobPosting
	var skillsJSON []byte
	err := h.db.QueryRowContext(ctx, `
		SELECT title, coalesce(description, ''), required_skills
		FROM job_postings WHERE id = $1`, entityID).Scan(
		&posting.Title, &posting.Description, &skillsJSON,
	)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(skillsJSON, &posting.RequiredSkills); err != nil {
		h.logger.Warn("failed to parse required skills", map[string]interface{}{
			"entityId": entityID,
			"error":    err,
		})
	}
	return posting.JobText(), nil
}

func (h *Handler) persistEmbedding(ctx context.Context, entityType, entityID string, embedding []float64) {
	data, err := json.Marshal(embedding)
	if err != nil {
		return
	}

	table := "candidate_profiles"
	if entityType == EntityTypeJob {
		table = "job_postings"
	}

	_, err = h.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET embedding = $1, updated_at = $2 WHERE id = $3`, table),
		data, time.Now().UTC().Format(time.RFC3339), entityID)
	if err != nil {
		h.logger.Warn("failed to persist embedding", map[string]interface{}{
			"entityType": entityType,
			"entityId":   entityID,
			"error":      err,
		})
	}
}

func embeddingCacheKey(entityType, entityID, text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s:%x", entityType, entityID, hash[:8])
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	// Transient failures go back to the broker with retries left so the
	// job is redelivered. Business errors raise a BPMN error instead.
	if retries > 0 {
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(fmt.Sprintf("[%s] %s", errorCode, errorMessage)).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err,
			})
		}
		return
	}

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
