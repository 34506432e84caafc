package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobportal/apiserver/types"
	"github.com/lib/pq"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) GetByID(ctx context.Context, id int) (types.Job, error) {
	const query = `
		SELECT id, title, description, company_id, required_skills, location,
		       job_type, experience_level, created_at, updated_at
		FROM jobs
		WHERE id = $1`
	var job types.Job
	var skills pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.CompanyID,
		&skills,
		&job.Location,
		&job.JobType,
		&job.ExperienceLevel,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	job.RequiredSkills = skills
	return job, nil
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	const query = `
		INSERT INTO jobs (
			title, description, company_id, required_skills, location,
			job_type, experience_level, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.CompanyID,
		pq.Array(job.RequiredSkills),
		job.Location,
		job.JobType,
		job.ExperienceLevel,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

// CountActedForCandidate returns how many jobs the candidate has acted
// on in any status, which is exactly how many postings the feed
// excludes.
func (r *JobRepository) CountActedForCandidate(ctx context.Context, candidateID int) (int, error) {
	const query = `
		SELECT COUNT(1)
		FROM applications
		WHERE candidate_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, candidateID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListUnactedForCandidate returns jobs the candidate has not applied to
// or ignored, joined with the owning company's display fields, newest
// posting first. Exclusion covers applications in any status.
func (r *JobRepository) ListUnactedForCandidate(ctx context.Context, candidateID int) ([]types.JobWithCompany, error) {
	const query = `
		SELECT j.id, j.title, j.description, j.company_id, j.required_skills,
		       j.location, j.job_type, j.experience_level, j.created_at, j.updated_at,
		       c.id, c.company_name, c.industry, c.profile_picture
		FROM jobs j
		JOIN users c ON c.id = j.company_id
		WHERE j.id NOT IN (
			SELECT a.job_id FROM applications a WHERE a.candidate_id = $1
		)
		ORDER BY j.created_at DESC, j.id DESC`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]types.JobWithCompany, 0)
	for rows.Next() {
		var item types.JobWithCompany
		var skills pq.StringArray
		var companyName, industry sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.CompanyID,
			&skills,
			&item.Location,
			&item.JobType,
			&item.ExperienceLevel,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Company.ID,
			&companyName,
			&industry,
			&item.Company.ProfilePicture,
		); err != nil {
			return nil, err
		}
		item.RequiredSkills = skills
		item.Company.CompanyName = companyName.String
		item.Company.Industry = industry.String
		jobs = append(jobs, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}
