// internal/workers/interview/schedule-interview/handler.go
package scheduleinterview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "schedule-interview"
)

var (
	ErrInterviewSlotInvalid  = errors.New("INTERVIEW_SLOT_INVALID")
	ErrInterviewSlotConflict = errors.New("INTERVIEW_SLOT_CONFLICT")
	ErrDatabaseInsertFailed  = errors.New("DATABASE_INSERT_FAILED")
)

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
		errorCode := "DATABASE_INSERT_FAILED"
		retries := int32(3)
		if errors.Is(err, ErrInterviewSlotInvalid) {
			errorCode = "INTERVIEW_SLOT_INVALID"
			retries = 0
		} else if errors.Is(err, ErrInterviewSlotConflict) {
			errorCode = "INTERVIEW_SLOT_CONFLICT"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" || input.RecruiterID == "" || input.CandidateID == "" {
		return nil, fmt.Errorf("%w: applicationId, recruiterId and candidateId are required", ErrInterviewSlotInvalid)
	}

	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scheduledAt %q", ErrInterviewSlotInvalid, input.ScheduledAt)
	}
	if scheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: slot is in the past", ErrInterviewSlotInvalid)
	}

	duration := time.Duration(input.DurationMinutes) * time.Minute
	if duration < h.config.MinDuration || duration > h.config.MaxDuration {
		return nil, fmt.Errorf("%w: duration %d minutes outside allowed range", ErrInterviewSlotInvalid, input.DurationMinutes)
	}

	// A recruiter cannot hold two interviews at once.
	endsAt := scheduledAt.Add(duration)
	var conflicts int
	err = h.db.QueryRowContext(ctx, `
		SELECT count(*) FROM interviews
		WHERE recruiter_id = $1
		  AND status = 'scheduled'
		  AND scheduled_at < $3
		  AND scheduled_at + (duration_minutes * interval '1 minute') > $2`,
		input.RecruiterID,
		scheduledAt.UTC().Format(time.RFC3339),
		endsAt.UTC().Format(time.RFC3339),
	).Scan(&conflicts)
	if err != nil {
		return nil, fmt.Errorf("%w: conflict check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if conflicts > 0 {
		return nil, fmt.Errorf("%w: recruiter %s already has an interview in this slot",
			ErrInterviewSlotConflict, input.RecruiterID)
	}

	interview := models.Interview{
		ID:              uuid.New().String(),
		ApplicationID:   input.ApplicationID,
		RecruiterID:     input.RecruiterID,
		CandidateID:     input.CandidateID,
		ScheduledAt:     scheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: input.DurationMinutes,
		Status:          "scheduled",
		MeetingURL:      input.MeetingURL,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO interviews (
			id, application_id, recruiter_id, candidate_id,
			scheduled_at, duration_minutes, status, meeting_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		interview.ID,
		interview.ApplicationID,
		interview.RecruiterID,
		interview.CandidateID,
		interview.ScheduledAt,
		interview.DurationMinutes,
		interview.Status,
		interview.MeetingURL,
		interview.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	h.logger.Info("interview scheduled", map[string]interface{}{
		"interviewId":   interview.ID,
		"applicationId": interview.ApplicationID,
		"recruiterId":   interview.RecruiterID,
		"scheduledAt":   interview.ScheduledAt,
	})

	return &Output{
		InterviewID: interview.ID,
		Status:      interview.Status,
		ScheduledAt: interview.ScheduledAt,
		CreatedAt:   interview.CreatedAt,
	}, nil
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
