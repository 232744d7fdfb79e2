// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-application-data"
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
)

// applicationSchema is the contract between the application form and
// the workflow. Unknown fields are allowed; they pass through untouched.
const applicationSchema = `{
	"type": "object",
	"required": ["personalInfo"],
	"properties": {
		"personalInfo": {
			"type": "object",
			"required": ["name", "email"],
			"properties": {
				"name": {"type": "string", "minLength": 1, "maxLength": 200},
				"email": {"type": "string", "format": "email"},
				"phone": {"type": "string", "maxLength": 30},
				"location": {"type": "string", "maxLength": 200}
			}
		},
		"experience": {
			"type": "object",
			"properties": {
				"yearsTotal": {"type": "number", "minimum": 0, "maximum": 60},
				"currentTitle": {"type": "string", "maxLength": 200},
				"skills": {
					"type": "array",
					"items": {"type": "string", "minLength": 1},
					"maxItems": 100
				},
				"linkedinUrl": {"type": "string", "format": "uri"},
				"portfolioUrl": {"type": "string", "format": "uri"}
			}
		},
		"coverLetter": {"type": "string", "maxLength": 10000},
		"answers": {"type": "object"}
	}
}`

type Handler struct {
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(applicationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile application schema: %w", err)
	}

	return &Handler{
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "APPLICATION_VALIDATION_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ApplicationData == nil {
		return nil, fmt.Errorf("%w: applicationData is required", ErrApplicationValidationFailed)
	}

	result, err := h.schema.Validate(gojsonschema.NewGoLoader(input.ApplicationData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApplicationValidationFailed, err)
	}

	var validationErrors []ValidationError
	for _, desc := range result.Errors() {
		validationErrors = append(validationErrors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}

	isValid := result.Valid()
	h.logger.Info("validation completed", map[string]interface{}{
		"candidateId": input.CandidateID,
		"jobId":       input.JobID,
		"isValid":     isValid,
		"errorCount":  len(validationErrors),
	})

	// Schema violations complete the job; the workflow branches on isValid.
	// Only malformed requests and schema engine failures throw.
	if !isValid {
		return &Output{
			IsValid:          false,
			ValidationErrors: validationErrors,
		}, nil
	}

	return &Output{
		IsValid:          true,
		ValidatedData:    input.ApplicationData,
		ValidationErrors: []ValidationError{},
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
		h.logger.Error("failed to complete job", map[string]interface{}{
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
