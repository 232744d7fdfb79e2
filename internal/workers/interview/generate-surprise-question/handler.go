// internal/workers/interview/generate-surprise-question/handler.go
package generatesurprisequestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/07Austs/talent2/internal/common/ai"
	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "generate-surprise-question"

	// How long asked questions stay in the dedup cache.
	askedQuestionTTL = 2 * time.Hour
)

var (
	ErrQuestionGenerationFailed  = errors.New("QUESTION_GENERATION_FAILED")
	ErrQuestionGenerationTimeout = errors.New("QUESTION_GENERATION_TIMEOUT")
)

// Static bank used when the generation backend is unavailable. The interview
// must never block on a vendor outage.
var fallbackQuestions = []string{
	"Walk me through what happens between typing a URL and seeing the page.",
	"How would you find the cause of a sudden latency spike in a service you own?",
	"Describe a race condition you have encountered and how you fixed it.",
	"When would you pick a message queue over a direct HTTP call between services?",
	"How do you decide what to cache and for how long?",
}

type Handler struct {
	config    *Config
	generator ai.Generator
	redis     *redis.Client
	logger    logger.Logger
}

func NewHandler(config *Config, generator ai.Generator, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		redis:     rdb,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "QUESTION_GENERATION_FAILED"
		retries := int32(3)
		if errors.Is(err, ErrQuestionGenerationTimeout) {
			errorCode = "QUESTION_GENERATION_TIMEOUT"
			retries = 1
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.InterviewID == "" {
		return nil, fmt.Errorf("%w: interviewId is required", ErrQuestionGenerationFailed)
	}

	prompt := h.buildPrompt(ctx, input)

	generatedBy := h.generator.Model()
	text, err := h.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrQuestionGenerationTimeout, err)
		}
		h.logger.Warn("generation failed, falling back to question bank", map[string]interface{}{
			"interviewId": input.InterviewID,
			"error":       err,
		})
		text = h.fallbackQuestion(ctx, input.InterviewID)
		generatedBy = "fallback"
	}

	question := strings.TrimSpace(text)
	if question == "" {
		question = h.fallbackQuestion(ctx, input.InterviewID)
		generatedBy = "fallback"
	}

	h.rememberQuestion(ctx, input.InterviewID, question)

	h.logger.Info("surprise question generated", map[string]interface{}{
		"interviewId": input.InterviewID,
		"topic":       input.Topic,
		"model":       generatedBy,
	})

	return &Output{
		Question: models.SurpriseQuestion{
			ID:            uuid.New().String(),
			InterviewID:   input.InterviewID,
			Question:      question,
			Topic:         input.Topic,
			TimeLimitSecs: h.config.TimeLimitSecs,
			GeneratedBy:   generatedBy,
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// fallbackQuestion returns the first bank question not yet asked in this
// interview, or the first one when the whole bank was used.
func (h *Handler) fallbackQuestion(ctx context.Context, interviewID string) string {
	asked := make(map[string]bool)
	for _, q := range h.askedQuestions(ctx, interviewID) {
		asked[q] = true
	}
	for _, q := range fallbackQuestions {
		if !asked[q] {
			return q
		}
	}
	return fallbackQuestions[0]
}

func (h *Handler) buildPrompt(ctx context.Context, input *Input) string {
	var b strings.Builder
	b.WriteString("Generate one short technical interview question that a candidate must answer live, without preparation.\n")
	b.WriteString("The question should take under 2 minutes to answer verbally and must not require writing code.\n")

	if input.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	}
	if len(input.JobSkills) > 0 {
		fmt.Fprintf(&b, "Relevant skills: %s\n", strings.Join(input.JobSkills, ", "))
	}
	if input.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty level: %s\n", input.Difficulty)
	}

	if asked := h.askedQuestions(ctx, input.InterviewID); len(asked) > 0 {
		b.WriteString("Do not repeat any of these already-asked questions:\n")
		for _, q := range asked {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	b.WriteString("Respond with the question text only.")
	return b.String()
}

func (h *Handler) askedQuestions(ctx context.Context, interviewID string) []string {
	if h.redis == nil {
		return nil
	}
	asked, err := h.redis.LRange(ctx, askedKey(interviewID), 0, -1).Result()
	if err != nil {
		return nil
	}
	return asked
}

func (h *Handler) rememberQuestion(ctx context.Context, interviewID, question string) {
	if h.redis == nil {
		return
	}
	key := askedKey(interviewID)
	if err := h.redis.RPush(ctx, key, question).Err(); err != nil {
		h.logger.Warn("failed to record asked question", map[string]interface{}{
			"interviewId": interviewID,
			"error":       err,
		})
		return
	}
	h.redis.Expire(ctx, key, askedQuestionTTL)
}

func askedKey(interviewID string) string {
	return "surprise:asked:" + interviewID
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
