// internal/workers/interview/evaluate-session-integrity/handler.go
package evaluatesessionintegrity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/common/metrics"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-session-integrity"

	// Per-severity penalty weights.
	penaltyHigh   = 0.30
	penaltyMedium = 0.15
	penaltyLow    = 0.05

	// Verdict thresholds on the final score.
	verdictCleanThreshold  = 0.85
	verdictReviewThreshold = 0.50

	VerdictClean   = "clean"
	VerdictReview  = "review"
	VerdictSuspect = "suspect"
)

var (
	ErrIntegrityEvaluationFailed = errors.New("INTEGRITY_EVALUATION_FAILED")
)

// severityByEvent classifies each known event type. Unknown event
// types count as low severity rather than being dropped.
var severityByEvent = map[string]string{
	models.EventPasteBurst:              models.SeverityHigh,
	models.EventSuddenCodeDelta:         models.SeverityHigh,
	models.EventTabSwitch:               models.SeverityMedium,
	models.EventSurpriseQuestionTimeout: models.SeverityMedium,
	models.EventExplanationWithoutCode:  models.SeverityLow,
}

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		h.failJob(client, job, "INTEGRITY_EVALUATION_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrIntegrityEvaluationFailed)
	}

	for _, event := range input.Events {
		if _, known := severityByEvent[event.Type]; !known {
			h.logger.Warn("unknown integrity event type counted as low severity", map[string]interface{}{
				"sessionId": input.SessionID,
				"eventType": event.Type,
			})
		}
	}

	evaluation := Evaluate(input.SessionID, input.Events)

	for _, flag := range evaluation.Flags {
		metrics.IntegrityFlagsTotal.WithLabelValues(flag.Severity).Inc()
	}

	if h.db != nil {
		h.persistEvaluation(ctx, evaluation)
	}

	h.logger.Info("session integrity evaluated", map[string]interface{}{
		"sessionId":   evaluation.SessionID,
		"score":       evaluation.Score,
		"verdict":     evaluation.Verdict,
		"highCount":   evaluation.HighCount,
		"mediumCount": evaluation.MediumCount,
		"lowCount":    evaluation.LowCount,
	})

	return &Output{
		SessionID:      evaluation.SessionID,
		IntegrityScore: evaluation.Score,
		Verdict:        evaluation.Verdict,
		HighCount:      evaluation.HighCount,
		MediumCount:    evaluation.MediumCount,
		LowCount:       evaluation.LowCount,
		Flags:          evaluation.Flags,
		EvaluatedAt:    evaluation.EvaluatedAt,
	}, nil
}

// Evaluate scores a session from its recorded events. The score starts
// at 1.0 and each flag subtracts its severity penalty, flooring at 0.
func Evaluate(sessionID string, events []models.IntegrityEvent) *models.IntegrityEvaluation {
	evaluation := &models.IntegrityEvaluation{
		SessionID:   sessionID,
		Flags:       []models.IntegrityFlag{},
		EvaluatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	penalty := 0.0
	for _, event := range events {
		severity, known := severityByEvent[event.Type]
		if !known {
			severity = models.SeverityLow
		}

		switch severity {
		case models.SeverityHigh:
			evaluation.HighCount++
			penalty += penaltyHigh
		case models.SeverityMedium:
			evaluation.MediumCount++
			penalty += penaltyMedium
		default:
			evaluation.LowCount++
			penalty += penaltyLow
		}

		evaluation.Flags = append(evaluation.Flags, models.IntegrityFlag{
			EventType: event.Type,
			Severity:  severity,
			Timestamp: event.Timestamp,
		})
	}

	score := 1.0 - penalty
	if score < 0 {
		score = 0
	}
	evaluation.Score = score
	evaluation.Verdict = verdictFor(score)

	return evaluation
}

func verdictFor(score float64) string {
	switch {
	case score >= verdictCleanThreshold:
		return VerdictClean
	case score >= verdictReviewThreshold:
		return VerdictReview
	default:
		return VerdictSuspect
	}
}

// persistEvaluation stores the result for recruiter review. Persistence
// failures are logged but do not fail the job.
func (h *Handler) persistEvaluation(ctx context.Context, evaluation *models.IntegrityEvaluation) {
	flagsJSON, err := json.Marshal(evaluation.Flags)
	if err != nil {
		flagsJSON = []byte("[]")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO integrity_evaluations (
			session_id, score, verdict, high_count, medium_count, low_count, flags, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		evaluation.SessionID,
		evaluation.Score,
		evaluation.Verdict,
		evaluation.HighCount,
		evaluation.MediumCount,
		evaluation.LowCount,
		flagsJSON,
		evaluation.EvaluatedAt,
	)
	if err != nil {
		h.logger.Warn("failed to persist integrity evaluation", map[string]interface{}{
			"sessionId": evaluation.SessionID,
			"error":     err,
		})
	}
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
