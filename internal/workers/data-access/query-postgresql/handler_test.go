// internal/workers/data-access/query-postgresql/handler_test.go
package querypostgresql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestHandler_Execute_CandidateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, full_name, email").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "full_name", "email", "headline", "summary",
			"location", "skills", "years_experience", "updated_at",
		}).AddRow(
			"cand-1", "Ada Example", "ada@example.com", "Backend Engineer", "Builds services",
			"Berlin", `["Go","PostgreSQL"]`, 5.0, "2026-08-01T00:00:00Z",
		))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:   string(models.QueryTypeCandidateProfile),
		CandidateID: "cand-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)
	data := output.Data.(map[string]interface{})
	assert.Equal(t, "Ada Example", data["fullName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApplicationHistory(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT a.id, a.job_id").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "title", "status", "match_score", "created_at",
		}).AddRow(
			"app-1", "job-1", "Backend Engineer", "submitted", 0.82, "2026-08-01T00:00:00Z",
		).AddRow(
			"app-2", "job-2", "SRE", "rejected", 0.41, "2026-07-01T00:00:00Z",
		))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:   string(models.QueryTypeApplicationHistory),
		CandidateID: "cand-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.RowCount)
}

func TestHandler_Execute_ApplicationHistoryRowError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT a.id, a.job_id").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "title", "status", "match_score", "created_at",
		}).AddRow(
			"app-1", "job-1", "Backend Engineer", "submitted", 0.82, "2026-08-01T00:00:00Z",
		).AddRow(
			"app-2", "job-2", "SRE", "rejected", 0.41, "2026-07-01T00:00:00Z",
		).RowError(1, assert.AnError))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType:   string(models.QueryTypeApplicationHistory),
		CandidateID: "cand-1",
	})

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}

func TestHandler_Execute_InvalidQueryType(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType: "drop_all_tables",
	})

	assert.ErrorIs(t, err, ErrInvalidQueryType)
}

func TestHandler_Execute_MissingParam(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeCandidateProfile),
	})

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, recruiter_id, title").
		WithArgs("job-1").
		WillReturnError(assert.AnError)

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeJobPosting),
		JobID:     "job-1",
	})

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}
