// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/common/metrics"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-match-score"

	// Weights of the match score components. Must sum to 1.
	weightSimilarity = 0.4
	weightSkills     = 0.4
	weightExperience = 0.2

	// Used when a component has no data to score on.
	neutralScore = 0.5
)

var (
	ErrMatchScoreFailed = errors.New("MATCH_SCORE_FAILED")
	ErrProfileNotFound  = errors.New("PROFILE_NOT_FOUND")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "MATCH_SCORE_FAILED"
		retries := int32(3)
		if errors.Is(err, ErrProfileNotFound) {
			errorCode = "PROFILE_NOT_FOUND"
			retries = 0
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	candidate := input.Candidate
	if candidate == nil {
		if input.CandidateID == "" {
			return nil, fmt.Errorf("%w: no candidate provided", ErrProfileNotFound)
		}
		var err error
		candidate, err = h.getCandidateProfile(ctx, input.CandidateID)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate %s: %v", ErrProfileNotFound, input.CandidateID, err)
		}
	}

	job := input.Job
	if job == nil {
		if input.JobID == "" {
			return nil, fmt.Errorf("%w: no job provided", ErrProfileNotFound)
		}
		var err error
		job, err = h.getJobPosting(ctx, input.JobID)
		if err != nil {
			return nil, fmt.Errorf("%w: job %s: %v", ErrProfileNotFound, input.JobID, err)
		}
	}

	breakdown := ComputeBreakdown(candidate, job)

	metrics.MatchScoreDistribution.Observe(breakdown.Score)

	h.logger.Info("match score calculated", map[string]interface{}{
		"candidateId": candidate.ID,
		"jobId":       job.ID,
		"score":       breakdown.Score,
		"similarity":  breakdown.CosineSimilarity,
		"skills":      breakdown.SkillOverlap,
		"experience":  breakdown.ExperienceRatio,
	})

	return &Output{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		MatchScore:  breakdown.Score,
		Breakdown:   breakdown,
	}, nil
}

// ComputeBreakdown combines embedding similarity, skill overlap and
// experience fit into a single score clamped to [0, 1].
func ComputeBreakdown(candidate *models.CandidateProfile, job *models.JobPosting) models.MatchBreakdown {
	similarity := embeddingSimilarity(candidate.Embedding, job.Embedding)
	skills := skillOverlap(candidate.Skills, job.RequiredSkills)
	experience := experienceRatio(candidate.YearsExperience, job.RequiredYears)

	score := clamp01(weightSimilarity*similarity + weightSkills*skills + weightExperience*experience)

	return models.MatchBreakdown{
		CosineSimilarity: similarity,
		SkillOverlap:     skills,
		ExperienceRatio:  experience,
		Score:            score,
	}
}

// embeddingSimilarity maps cosine similarity from [-1, 1] to [0, 1].
// Missing or mismatched embeddings score neutral.
func embeddingSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return neutralScore
	}
	cos := CosineSimilarity(a, b)
	return (cos + 1) / 2
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Zero vectors yield 0.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func skillOverlap(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return neutralScore
	}

	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	matched := 0
	for _, s := range requiredSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			matched++
		}
	}
	return float64(matched) / float64(len(requiredSkills))
}

func experienceRatio(years, required float64) float64 {
	if required <= 0 {
		return 1.0
	}
	if years < 0 {
		years = 0
	}
	return math.Min(years/required, 1.0)
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

func (h *Handler) getCandidateProfile(ctx context.Context, candidateID string) (*models.CandidateProfile, error) {
	cacheKey := "candidate:profile:" + candidateID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.CandidateProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT id, full_name, skills, years_experience, embedding
		FROM candidate_profiles WHERE id = $1`, candidateID)

	var profile models.CandidateProfile
	var skills, embedding []byte
	err := row.Scan(&profile.ID, &profile.FullName, &skills, &profile.YearsExperience, &embedding)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skills, &profile.Skills); err != nil {
		profile.Skills = []string{}
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &profile.Embedding); err != nil {
			profile.Embedding = nil
		}
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) getJobPosting(ctx context.Context, jobID string) (*models.JobPosting, error) {
	cacheKey := "job:posting:" + jobID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var job models.JobPosting
		if err := json.Unmarshal([]byte(val), &job); err == nil {
			return &job, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT id, title, required_skills, required_years, embedding
		FROM job_postings WHERE id = $1`, jobID)

	var job models.JobPosting
	var skills, embedding []byte
	err := row.Scan(&job.ID, &job.Title, &skills, &job.RequiredYears, &embedding)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skills, &job.RequiredSkills); err != nil {
		job.RequiredSkills = []string{}
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &job.Embedding); err != nil {
			job.Embedding = nil
		}
	}

	data, _ := json.Marshal(job)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &job, nil
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
