// internal/workers/data-access/query-postgresql/queries/candidate.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func CandidateProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	candidateID, ok := params["candidateId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, fullName, email, headline, summary, location string
	var skills string
	var yearsExperience float64
	var updatedAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, full_name, email, coalesce(headline, ''), coalesce(summary, ''),
		       coalesce(location, ''), skills, years_experience, updated_at
		FROM candidate_profiles
		WHERE id = $1`, candidateID).Scan(
		&id, &fullName, &email, &headline, &summary,
		&location, &skills, &yearsExperience, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":              id,
		"fullName":        fullName,
		"email":           email,
		"headline":        headline,
		"summary":         summary,
		"location":        location,
		"skills":          skills,
		"yearsExperience": yearsExperience,
		"updatedAt":       updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func ApplicationHistory(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	candidateID, ok := params["candidateId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.job_id, j.title, a.status, a.match_score, a.created_at
		FROM applications a
		JOIN job_postings j ON j.id = a.job_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC`, candidateID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, jobID, title, status, createdAt string
		var matchScore float64
		if err := rows.Scan(&id, &jobID, &title, &status, &matchScore, &createdAt); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":         id,
			"jobId":      jobID,
			"jobTitle":   title,
			"status":     status,
			"matchScore": matchScore,
			"createdAt":  createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
