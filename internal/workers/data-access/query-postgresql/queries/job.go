// internal/workers/data-access/query-postgresql/queries/job.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func JobPosting(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	jobID, ok := params["jobId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, recruiterID, title, description, location, status string
	var requiredSkills string
	var requiredYears float64
	var remote bool
	var createdAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, recruiter_id, title, description, required_skills,
		       required_years, coalesce(location, ''), remote, status, created_at
		FROM job_postings
		WHERE id = $1`, jobID).Scan(
		&id, &recruiterID, &title, &description, &requiredSkills,
		&requiredYears, &location, &remote, &status, &createdAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":             id,
		"recruiterId":    recruiterID,
		"title":          title,
		"description":    description,
		"requiredSkills": requiredSkills,
		"requiredYears":  requiredYears,
		"location":       location,
		"remote":         remote,
		"status":         status,
		"createdAt":      createdAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func RecruiterJobs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	recruiterID, ok := params["recruiterId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, status, created_at,
		       (SELECT count(*) FROM applications WHERE job_id = job_postings.id) AS application_count
		FROM job_postings
		WHERE recruiter_id = $1
		ORDER BY created_at DESC`, recruiterID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, title, status, createdAt string
		var applicationCount int
		if err := rows.Scan(&id, &title, &status, &createdAt, &applicationCount); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":               id,
			"title":            title,
			"status":           status,
			"createdAt":        createdAt,
			"applicationCount": applicationCount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func InterviewSchedule(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	recruiterID, ok := params["recruiterId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT i.id, i.application_id, i.candidate_id, c.full_name,
		       i.scheduled_at, i.duration_minutes, i.status
		FROM interviews i
		JOIN candidate_profiles c ON c.id = i.candidate_id
		WHERE i.recruiter_id = $1 AND i.status = 'scheduled'
		ORDER BY i.scheduled_at ASC`, recruiterID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, applicationID, candidateID, fullName, scheduledAt, status string
		var durationMinutes int
		if err := rows.Scan(&id, &applicationID, &candidateID, &fullName, &scheduledAt, &durationMinutes, &status); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":              id,
			"applicationId":   applicationID,
			"candidateId":     candidateID,
			"candidateName":   fullName,
			"scheduledAt":     scheduledAt,
			"durationMinutes": durationMinutes,
			"status":          status,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
