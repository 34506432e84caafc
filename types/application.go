package types

import "time"

// ApplicationStatus is the state of a student's action on a job.
//
// A status enters "ignored" or "interested" only at creation time,
// chosen by the student. The only legal transitions afterwards are
// interested -> accepted and interested -> rejected, performed by the
// owning company. "ignored" has no outgoing transition; "accepted" and
// "rejected" are terminal.
type ApplicationStatus string

// Supported application statuses.
const (
	StatusIgnored    ApplicationStatus = "ignored"
	StatusInterested ApplicationStatus = "interested"
	StatusAccepted   ApplicationStatus = "accepted"
	StatusRejected   ApplicationStatus = "rejected"
)

// ValidInitialStatus reports whether v may be chosen by a student at
// application time.
func ValidInitialStatus(v ApplicationStatus) bool {
	return v == StatusIgnored || v == StatusInterested
}

// ValidReviewStatus reports whether v may be set by a company review.
func ValidReviewStatus(v ApplicationStatus) bool {
	return v == StatusAccepted || v == StatusRejected
}

// Application records a student's action on a job and the owning
// company's subsequent decision.
//
// At most one application exists per (JobID, CandidateID) pair; the
// database unique index on that pair is the authoritative duplicate
// guard.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// JobID references the job applied to.
	JobID int `json:"jobId" db:"job_id"`

	// CandidateID references the student account that created the
	// application.
	CandidateID int `json:"candidateId" db:"candidate_id"`

	// CompanyID is the owning company of the job, denormalized at
	// creation time. Jobs are immutable so it never drifts; it is the
	// authorization key for review.
	CompanyID int `json:"companyId" db:"company_id"`

	// Status is the application's current state.
	Status ApplicationStatus `json:"status" db:"status"`

	// CreatedAt is the timestamp when the application was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent status change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplicationDetail is an application joined with the job, company and
// candidate summaries used in API responses.
type ApplicationDetail struct {
	Application
	Job       Job              `json:"job"`
	Company   CompanySummary   `json:"company"`
	Candidate CandidateSummary `json:"candidate"`
}

// StatusCounts aggregates a company's applications by status for the
// dashboard.
type StatusCounts struct {
	Ignored    int `json:"ignored"`
	Interested int `json:"interested"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Total      int `json:"total"`
}
