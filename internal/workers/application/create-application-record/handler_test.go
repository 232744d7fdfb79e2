// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/07Austs/talent2/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func testInput() *Input {
	return &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		ApplicationData: map[string]interface{}{
			"personalInfo": map[string]interface{}{
				"name":  "Ada Example",
				"email": "ada@example.com",
			},
		},
		MatchScore: 0.82,
	}
}

func TestHandler_Execute_CreatesRecord(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.ApplicationID)
	assert.Equal(t, "submitted", output.ApplicationStatus)
	assert.NotEmpty(t, output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateApplication(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), testInput())

	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestHandler_Execute_InsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(assert.AnError)

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), testInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
}

// fakeJobClient records which job command a handler dispatched so the
// fail-vs-throw routing can be asserted without a broker.
type fakeJobClient struct {
	completed     bool
	failJobCalls  int
	failedRetries int32
	failedMessage string
	throwCalls    int
	thrownCode    string
	thrownMessage string
}

var _ worker.JobClient = (*fakeJobClient)(nil)

func (c *fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return &fakeCompleteCommand{client: c}
}

func (c *fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return &fakeFailCommand{client: c}
}

func (c *fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return &fakeThrowCommand{client: c}
}

type fakeCompleteCommand struct {
	client *fakeJobClient
}

func (f *fakeCompleteCommand) JobKey(int64) commands.CompleteJobCommandStep2 { return f }
func (f *fakeCompleteCommand) VariablesFromString(string) (commands.DispatchCompleteJobCommand, error) {
	return f, nil
}
func (f *fakeCompleteCommand) VariablesFromStringer(fmt.Stringer) (commands.DispatchCompleteJobCommand, error) {
	return f, nil
}
func (f *fakeCompleteCommand) VariablesFromMap(map[string]interface{}) (commands.DispatchCompleteJobCommand, error) {
	return f, nil
}
func (f *fakeCompleteCommand) VariablesFromObject(interface{}) (commands.DispatchCompleteJobCommand, error) {
	return f, nil
}
func (f *fakeCompleteCommand) VariablesFromObjectIgnoreOmitempty(interface{}) (commands.DispatchCompleteJobCommand, error) {
	return f, nil
}
func (f *fakeCompleteCommand) Send(context.Context) (*pb.CompleteJobResponse, error) {
	f.client.completed = true
	return &pb.CompleteJobResponse{}, nil
}

type fakeFailCommand struct {
	client  *fakeJobClient
	retries int32
	message string
}

func (f *fakeFailCommand) JobKey(int64) commands.FailJobCommandStep2 { return f }
func (f *fakeFailCommand) Retries(retries int32) commands.FailJobCommandStep3 {
	f.retries = retries
	return f
}
func (f *fakeFailCommand) RetryBackoff(time.Duration) commands.FailJobCommandStep3 { return f }
func (f *fakeFailCommand) ErrorMessage(message string) commands.FailJobCommandStep3 {
	f.message = message
	return f
}
func (f *fakeFailCommand) VariablesFromString(string) (commands.DispatchFailJobCommand, error) {
	return f, nil
}
func (f *fakeFailCommand) VariablesFromStringer(fmt.Stringer) (commands.DispatchFailJobCommand, error) {
	return f, nil
}
func (f *fakeFailCommand) VariablesFromMap(map[string]interface{}) (commands.DispatchFailJobCommand, error) {
	return f, nil
}
func (f *fakeFailCommand) VariablesFromObject(interface{}) (commands.DispatchFailJobCommand, error) {
	return f, nil
}
func (f *fakeFailCommand) VariablesFromObjectIgnoreOmitempty(interface{}) (commands.DispatchFailJobCommand, error) {
	return f, nil
}
func (f *fakeFailCommand) Send(context.Context) (*pb.FailJobResponse, error) {
	f.client.failJobCalls++
	f.client.failedRetries = f.retries
	f.client.failedMessage = f.message
	return &pb.FailJobResponse{}, nil
}

type fakeThrowCommand struct {
	client  *fakeJobClient
	code    string
	message string
}

func (f *fakeThrowCommand) JobKey(int64) commands.ThrowErrorCommandStep2 { return f }
func (f *fakeThrowCommand) ErrorCode(code string) commands.DispatchThrowErrorCommand {
	f.code = code
	return f
}
func (f *fakeThrowCommand) ErrorMessage(message string) commands.DispatchThrowErrorCommand {
	f.message = message
	return f
}
func (f *fakeThrowCommand) VariablesFromString(string) (commands.DispatchThrowErrorCommand, error) {
	return f, nil
}
func (f *fakeThrowCommand) VariablesFromStringer(fmt.Stringer) (commands.DispatchThrowErrorCommand, error) {
	return f, nil
}
func (f *fakeThrowCommand) VariablesFromMap(map[string]interface{}) (commands.DispatchThrowErrorCommand, error) {
	return f, nil
}
func (f *fakeThrowCommand) VariablesFromObject(interface{}) (commands.DispatchThrowErrorCommand, error) {
	return f, nil
}
func (f *fakeThrowCommand) VariablesFromObjectIgnoreOmitempty(interface{}) (commands.DispatchThrowErrorCommand, error) {
	return f, nil
}
func (f *fakeThrowCommand) Send(context.Context) (*pb.ThrowErrorResponse, error) {
	f.client.throwCalls++
	f.client.thrownCode = f.code
	f.client.thrownMessage = f.message
	return &pb.ThrowErrorResponse{}, nil
}

func activatedJob(t *testing.T, input *Input) entities.Job {
	variables, err := json.Marshal(input)
	require.NoError(t, err)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Variables: string(variables)}}
}

func TestHandler_Handle_TransientFailureRequestsRetries(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnError(assert.AnError)

	client := &fakeJobClient{}
	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	handler.Handle(client, activatedJob(t, testInput()))

	assert.Equal(t, 1, client.failJobCalls)
	assert.Equal(t, int32(3), client.failedRetries)
	assert.Contains(t, client.failedMessage, "DATABASE_INSERT_FAILED")
	assert.Zero(t, client.throwCalls)
	assert.False(t, client.completed)
}

func TestHandler_Handle_DuplicateThrowsBusinessError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	client := &fakeJobClient{}
	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	handler.Handle(client, activatedJob(t, testInput()))

	assert.Equal(t, 1, client.throwCalls)
	assert.Equal(t, "DUPLICATE_APPLICATION", client.thrownCode)
	assert.Zero(t, client.failJobCalls)
	assert.False(t, client.completed)
}

func TestHandler_Handle_CompletesOnSuccess(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	client := &fakeJobClient{}
	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	handler.Handle(client, activatedJob(t, testInput()))

	assert.True(t, client.completed)
	assert.Zero(t, client.failJobCalls)
	assert.Zero(t, client.throwCalls)
}

func TestHandler_Execute_AuditFailureDoesNotFailJob(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(assert.AnError)

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "submitted", output.ApplicationStatus)
}
