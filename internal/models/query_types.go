// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeCandidateProfile   QueryType = "candidate_profile"
	QueryTypeJobPosting         QueryType = "job_posting"
	QueryTypeApplicationHistory QueryType = "application_history"
	QueryTypeRecruiterJobs      QueryType = "recruiter_jobs"
	QueryTypeInterviewSchedule  QueryType = "interview_schedule"
)
