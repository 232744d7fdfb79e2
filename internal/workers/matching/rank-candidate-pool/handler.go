// internal/workers/matching/rank-candidate-pool/handler.go
package rankcandidatepool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-candidate-pool"

	// Final score = match * 0.6 + search * 0.3 + freshness * 0.1
	weightMatch     = 0.6
	weightSearch    = 0.3
	weightFreshness = 0.1

	// Search scores above this clamp to 1 after normalization.
	searchScoreCeiling = 10.0
)

var (
	ErrNilInput          = errors.New("input cannot be nil")
	ErrPoolRankingFailed = errors.New("POOL_RANKING_FAILED")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "POOL_RANKING_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	// Deduplicate by candidate ID, keeping the best match score.
	seen := make(map[string]int)
	var ranked []models.RankedCandidate

	for _, c := range input.Candidates {
		if c.CandidateID == "" {
			continue
		}

		matchScore := clamp01(c.MatchScore)
		searchScore := normalizeSearchScore(c.SearchScore)
		freshness := h.freshnessScore(c.UpdatedAt)

		finalScore := matchScore*weightMatch + searchScore*weightSearch + freshness*weightFreshness

		entry := models.RankedCandidate{
			CandidateID: c.CandidateID,
			FullName:    c.FullName,
			Headline:    c.Headline,
			MatchScore:  matchScore,
			SearchScore: searchScore,
			Freshness:   freshness,
			FinalScore:  finalScore,
		}

		if idx, exists := seen[c.CandidateID]; exists {
			if entry.FinalScore > ranked[idx].FinalScore {
				ranked[idx] = entry
			}
			continue
		}
		seen[c.CandidateID] = len(ranked)
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	limit := h.config.MaxItems
	if input.TopN > 0 && input.TopN < limit {
		limit = input.TopN
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	h.logger.Info("pool ranking completed", map[string]interface{}{
		"jobId":       input.JobID,
		"inputCount":  len(input.Candidates),
		"outputCount": len(ranked),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &Output{
		JobID:            input.JobID,
		RankedCandidates: ranked,
		TotalEvaluated:   len(input.Candidates),
	}, nil
}

// normalizeSearchScore maps raw Elasticsearch scores to [0, 1].
func normalizeSearchScore(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return math.Min(score/searchScoreCeiling, 1.0)
}

// freshnessScore decays linearly over 90 days since the profile update.
// Unparseable or missing timestamps score 0.
func (h *Handler) freshnessScore(updatedAt string) float64 {
	if updatedAt == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return 0
	}
	age := time.Since(t)
	if age < 0 {
		return 1
	}
	days := age.Hours() / 24
	if days >= 90 {
		return 0
	}
	return 1 - days/90
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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
