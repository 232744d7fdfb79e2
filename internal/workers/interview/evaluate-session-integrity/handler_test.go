// internal/workers/interview/evaluate-session-integrity/handler_test.go
package evaluatesessionintegrity

import (
	"context"
	"testing"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func event(eventType string) models.IntegrityEvent {
	return models.IntegrityEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func TestEvaluate_NoEvents(t *testing.T) {
	evaluation := Evaluate("session-1", nil)

	assert.Equal(t, 1.0, evaluation.Score)
	assert.Equal(t, VerdictClean, evaluation.Verdict)
	assert.Empty(t, evaluation.Flags)
}

func TestEvaluate_SeverityWeights(t *testing.T) {
	tests := []struct {
		name          string
		events        []models.IntegrityEvent
		expectedScore float64
		verdict       string
	}{
		{
			name:          "single high",
			events:        []models.IntegrityEvent{event(models.EventPasteBurst)},
			expectedScore: 0.70,
			verdict:       VerdictReview,
		},
		{
			name:          "single medium",
			events:        []models.IntegrityEvent{event(models.EventTabSwitch)},
			expectedScore: 0.85,
			verdict:       VerdictClean,
		},
		{
			name:          "single low",
			events:        []models.IntegrityEvent{event(models.EventExplanationWithoutCode)},
			expectedScore: 0.95,
			verdict:       VerdictClean,
		},
		{
			name: "mixed severities",
			events: []models.IntegrityEvent{
				event(models.EventPasteBurst),
				event(models.EventTabSwitch),
				event(models.EventExplanationWithoutCode),
			},
			expectedScore: 0.50,
			verdict:       VerdictReview,
		},
		{
			name: "two highs and a medium",
			events: []models.IntegrityEvent{
				event(models.EventPasteBurst),
				event(models.EventSuddenCodeDelta),
				event(models.EventSurpriseQuestionTimeout),
			},
			expectedScore: 0.25,
			verdict:       VerdictSuspect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluation := Evaluate("session-1", tt.events)
			assert.InDelta(t, tt.expectedScore, evaluation.Score, 1e-9)
			assert.Equal(t, tt.verdict, evaluation.Verdict)
		})
	}
}

func TestEvaluate_FloorsAtZero(t *testing.T) {
	var events []models.IntegrityEvent
	for i := 0; i < 10; i++ {
		events = append(events, event(models.EventPasteBurst))
	}

	evaluation := Evaluate("session-1", events)

	assert.Equal(t, 0.0, evaluation.Score)
	assert.Equal(t, VerdictSuspect, evaluation.Verdict)
	assert.Equal(t, 10, evaluation.HighCount)
}

func TestEvaluate_NonIncreasing(t *testing.T) {
	events := []models.IntegrityEvent{
		event(models.EventTabSwitch),
		event(models.EventPasteBurst),
		event(models.EventExplanationWithoutCode),
		event(models.EventSuddenCodeDelta),
	}

	prev := 1.0
	for i := 0; i <= len(events); i++ {
		score := Evaluate("session-1", events[:i]).Score
		assert.LessOrEqual(t, score, prev, "adding events must not raise the score")
		prev = score
	}
}

func TestEvaluate_UnknownEventCountsAsLow(t *testing.T) {
	evaluation := Evaluate("session-1", []models.IntegrityEvent{event("window_resize")})

	assert.InDelta(t, 0.95, evaluation.Score, 1e-9)
	assert.Equal(t, 1, evaluation.LowCount)
	require.Len(t, evaluation.Flags, 1)
	assert.Equal(t, models.SeverityLow, evaluation.Flags[0].Severity)
}

func TestHandler_Execute_LogsUnknownEventTypes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	handler := NewHandler(createTestConfig(), nil, logger.NewZapAdapter(zap.New(core)))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-1",
		Events:    []models.IntegrityEvent{event("window_resize")},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, output.LowCount)
	assert.Equal(t, 1, logs.FilterMessage("unknown integrity event type counted as low severity").Len())
}

func TestHandler_Execute_PersistsEvaluation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO integrity_evaluations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-1",
		Events:    []models.IntegrityEvent{event(models.EventTabSwitch)},
	})

	require.NoError(t, err)
	assert.Equal(t, "session-1", output.SessionID)
	assert.InDelta(t, 0.85, output.IntegrityScore, 1e-9)
	assert.Equal(t, 1, output.MediumCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PersistFailureDoesNotFailJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO integrity_evaluations").
		WillReturnError(assert.AnError)

	handler := NewHandler(createTestConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-1",
		Events:    nil,
	})

	require.NoError(t, err)
	assert.Equal(t, VerdictClean, output.Verdict)
}

func TestHandler_Execute_MissingSessionID(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{SessionID: ""})

	assert.ErrorIs(t, err, ErrIntegrityEvaluationFailed)
}
