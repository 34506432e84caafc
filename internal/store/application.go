package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobportal/apiserver/types"
	"github.com/lib/pq"
)

// ApplicationRepository handles persistence for applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application. A violation of the (job_id,
// candidate_id) unique index is reported as ErrDuplicate; it is the
// authoritative duplicate signal under concurrent creates.
func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO applications (job_id, candidate_id, company_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.JobID,
		app.CandidateID,
		app.CompanyID,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID); err != nil {
		if isUniqueViolation(err) {
			return types.Application{}, ErrDuplicate
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int) (types.Application, error) {
	const query = `
		SELECT id, job_id, candidate_id, company_id, status, created_at, updated_at
		FROM applications
		WHERE id = $1`
	return r.scanApplication(r.db.QueryRowContext(ctx, query, id))
}

// GetByJobAndCandidate looks up the application for a (job, candidate)
// pair. Used as the fast path of the duplicate check so the existing
// status can be reported.
func (r *ApplicationRepository) GetByJobAndCandidate(ctx context.Context, jobID, candidateID int) (types.Application, error) {
	const query = `
		SELECT id, job_id, candidate_id, company_id, status, created_at, updated_at
		FROM applications
		WHERE job_id = $1 AND candidate_id = $2`
	return r.scanApplication(r.db.QueryRowContext(ctx, query, jobID, candidateID))
}

// UpdateStatusIfInterested performs the review transition as a single
// conditional write. It reports false when the application was not in
// the interested state at write time, which covers both illegal
// transitions and a concurrent review that got there first.
func (r *ApplicationRepository) UpdateStatusIfInterested(ctx context.Context, id int, status types.ApplicationStatus) (bool, error) {
	const query = `
		UPDATE applications
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id, types.StatusInterested)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

const detailColumns = `
	a.id, a.job_id, a.candidate_id, a.company_id, a.status, a.created_at, a.updated_at,
	j.id, j.title, j.description, j.company_id, j.required_skills, j.location,
	j.job_type, j.experience_level, j.created_at, j.updated_at,
	c.id, c.company_name, c.industry, c.profile_picture,
	s.id, s.first_name, s.last_name, s.email, s.gender, s.skills, s.profile_picture, s.resume_key`

const detailJoins = `
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users c ON c.id = a.company_id
	JOIN users s ON s.id = a.candidate_id`

// GetDetail returns an application joined with its job, company and
// candidate summaries.
func (r *ApplicationRepository) GetDetail(ctx context.Context, id int) (types.ApplicationDetail, error) {
	const query = `
		SELECT` + detailColumns + detailJoins + `
		WHERE a.id = $1`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return types.ApplicationDetail{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.ApplicationDetail{}, err
		}
		return types.ApplicationDetail{}, ErrNotFound
	}
	detail, err := scanDetail(rows)
	if err != nil {
		return types.ApplicationDetail{}, err
	}
	return detail, rows.Err()
}

// ListDetailsByCompany returns all applications to the company's jobs,
// newest first, joined with job and candidate summaries.
func (r *ApplicationRepository) ListDetailsByCompany(ctx context.Context, companyID int) ([]types.ApplicationDetail, error) {
	const query = `
		SELECT` + detailColumns + detailJoins + `
		WHERE a.company_id = $1
		ORDER BY a.created_at DESC, a.id DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]types.ApplicationDetail, 0)
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

// CountByCompany recounts the company's applications by status for the
// dashboard.
func (r *ApplicationRepository) CountByCompany(ctx context.Context, companyID int) (types.StatusCounts, error) {
	const query = `
		SELECT status, COUNT(1)
		FROM applications
		WHERE company_id = $1
		GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return types.StatusCounts{}, err
	}
	defer rows.Close()

	var counts types.StatusCounts
	for rows.Next() {
		var status types.ApplicationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return types.StatusCounts{}, err
		}
		switch status {
		case types.StatusIgnored:
			counts.Ignored = count
		case types.StatusInterested:
			counts.Interested = count
		case types.StatusAccepted:
			counts.Accepted = count
		case types.StatusRejected:
			counts.Rejected = count
		}
		counts.Total += count
	}
	return counts, rows.Err()
}

func (r *ApplicationRepository) scanApplication(row *sql.Row) (types.Application, error) {
	var app types.Application
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.CandidateID,
		&app.CompanyID,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func scanDetail(rows *sql.Rows) (types.ApplicationDetail, error) {
	var detail types.ApplicationDetail
	var jobSkills, candidateSkills pq.StringArray
	var companyName, industry, gender, resumeKey sql.NullString
	err := rows.Scan(
		&detail.ID,
		&detail.JobID,
		&detail.CandidateID,
		&detail.CompanyID,
		&detail.Status,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Job.ID,
		&detail.Job.Title,
		&detail.Job.Description,
		&detail.Job.CompanyID,
		&jobSkills,
		&detail.Job.Location,
		&detail.Job.JobType,
		&detail.Job.ExperienceLevel,
		&detail.Job.CreatedAt,
		&detail.Job.UpdatedAt,
		&detail.Company.ID,
		&companyName,
		&industry,
		&detail.Company.ProfilePicture,
		&detail.Candidate.ID,
		&detail.Candidate.FirstName,
		&detail.Candidate.LastName,
		&detail.Candidate.Email,
		&gender,
		&candidateSkills,
		&detail.Candidate.ProfilePicture,
		&resumeKey,
	)
	if err != nil {
		return types.ApplicationDetail{}, err
	}
	detail.Job.RequiredSkills = jobSkills
	detail.Company.CompanyName = companyName.String
	detail.Company.Industry = industry.String
	detail.Candidate.Gender = gender.String
	detail.Candidate.Skills = candidateSkills
	detail.Candidate.ResumeKey = resumeKey.String
	return detail, nil
}
