package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobportal/apiserver/internal/apperr"
	"github.com/jobportal/apiserver/internal/store"
	"github.com/jobportal/apiserver/types"
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app types.Application) (types.Application, error)
	GetByID(ctx context.Context, id int) (types.Application, error)
	GetByJobAndCandidate(ctx context.Context, jobID, candidateID int) (types.Application, error)
	UpdateStatusIfInterested(ctx context.Context, id int, status types.ApplicationStatus) (bool, error)
	GetDetail(ctx context.Context, id int) (types.ApplicationDetail, error)
	ListDetailsByCompany(ctx context.Context, companyID int) ([]types.ApplicationDetail, error)
	CountByCompany(ctx context.Context, companyID int) (types.StatusCounts, error)
}

// ApplicationEvents publishes application lifecycle events. Publishing
// is best-effort and never fails the request.
type ApplicationEvents interface {
	ApplicationCreated(ctx context.Context, detail types.ApplicationDetail)
	ApplicationReviewed(ctx context.Context, detail types.ApplicationDetail)
}

// DuplicateApplicationError reports a second create attempt for a
// (job, candidate) pair, carrying the existing application's status.
type DuplicateApplicationError struct {
	CurrentStatus types.ApplicationStatus
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("You have already %s this job.", e.CurrentStatus)
}

// IllegalTransitionError reports a review attempt on an application
// that is not in the interested state.
type IllegalTransitionError struct {
	CurrentStatus types.ApplicationStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("Cannot review application with status '%s'. Only 'interested' applications can be reviewed.", e.CurrentStatus)
}

// ApplicationService enforces the application state machine and its
// ownership rules.
//
// States enter "ignored" or "interested" only at creation; the only
// transitions afterwards are interested -> accepted and
// interested -> rejected, and only by the owning company. The
// transition executes as a conditional write so concurrent reviews
// cannot both succeed.
type ApplicationService struct {
	repo   ApplicationRepository
	jobs   JobRepository
	events ApplicationEvents
}

// NewApplicationService constructs the service. events may be nil to
// disable lifecycle publishing.
func NewApplicationService(repo ApplicationRepository, jobs JobRepository, events ApplicationEvents) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, events: events}
}

// CreateResult is the outcome of a successful Create.
type CreateResult struct {
	Application types.ApplicationDetail

	// MissingSkills lists required skills the candidate does not
	// claim. Advisory only; it never blocks the application.
	MissingSkills []string
}

// Create records a student's action on a job at the chosen initial
// status. The existence read is a fast path so the duplicate response
// can surface the existing status; the unique index at write time is
// the authoritative duplicate guard.
func (s *ApplicationService) Create(ctx context.Context, student types.User, jobID int, status types.ApplicationStatus) (CreateResult, error) {
	if !student.IsStudent() {
		return CreateResult{}, apperr.Authorization("Only students can apply for jobs.")
	}
	if !types.ValidInitialStatus(status) {
		return CreateResult{}, apperr.Validation("Invalid status. Only 'ignored' or 'interested' are allowed.", nil)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CreateResult{}, apperr.NotFound("Job not found.")
		}
		return CreateResult{}, apperr.Internal("Server error during application process.", err)
	}

	if existing, err := s.repo.GetByJobAndCandidate(ctx, jobID, student.ID); err == nil {
		return CreateResult{}, &DuplicateApplicationError{CurrentStatus: existing.Status}
	} else if !errors.Is(err, store.ErrNotFound) {
		return CreateResult{}, apperr.Internal("Server error during application process.", err)
	}

	missing := missingSkills(job.RequiredSkills, student.SkillList())

	created, err := s.repo.Create(ctx, types.Application{
		JobID:       jobID,
		CandidateID: student.ID,
		CompanyID:   job.CompanyID,
		Status:      status,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race to a concurrent create; report the same
			// duplicate error the fast path produces.
			if existing, readErr := s.repo.GetByJobAndCandidate(ctx, jobID, student.ID); readErr == nil {
				return CreateResult{}, &DuplicateApplicationError{CurrentStatus: existing.Status}
			}
			return CreateResult{}, apperr.Conflict("Duplicate application detected.")
		}
		return CreateResult{}, apperr.Internal("Server error during application process.", err)
	}

	detail, err := s.repo.GetDetail(ctx, created.ID)
	if err != nil {
		return CreateResult{}, apperr.Internal("Server error during application process.", err)
	}

	if s.events != nil {
		s.events.ApplicationCreated(ctx, detail)
	}
	return CreateResult{Application: detail, MissingSkills: missing}, nil
}

// ReviewResult is the outcome of a successful Review.
type ReviewResult struct {
	Application types.ApplicationDetail
	Dashboard   types.StatusCounts
}

// Review transitions an application from interested to accepted or
// rejected on behalf of the owning company. The write is conditional
// on the interested state; a no-op write is reported as a conflict
// with the status observed afterwards.
func (s *ApplicationService) Review(ctx context.Context, company types.User, applicationID int, status types.ApplicationStatus) (ReviewResult, error) {
	if !company.IsCompany() {
		return ReviewResult{}, apperr.Authorization("Only companies can review applications.")
	}
	if !types.ValidReviewStatus(status) {
		return ReviewResult{}, apperr.Validation("Invalid status. Use 'accepted' or 'rejected'.", nil)
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ReviewResult{}, apperr.NotFound("Application not found.")
		}
		return ReviewResult{}, apperr.Internal("Server error during review process.", err)
	}

	if app.Status != types.StatusInterested {
		return ReviewResult{}, &IllegalTransitionError{CurrentStatus: app.Status}
	}
	// The denormalized company id is the authorization key; no fresh
	// join against the job.
	if app.CompanyID != company.ID {
		return ReviewResult{}, apperr.Authorization("Access denied. You can only review applications for your own jobs.")
	}

	updated, err := s.repo.UpdateStatusIfInterested(ctx, applicationID, status)
	if err != nil {
		return ReviewResult{}, apperr.Internal("Server error during review process.", err)
	}
	if !updated {
		// A concurrent review got there first; report the state it
		// left behind.
		current, readErr := s.repo.GetByID(ctx, applicationID)
		if readErr != nil {
			return ReviewResult{}, apperr.Internal("Server error during review process.", readErr)
		}
		return ReviewResult{}, &IllegalTransitionError{CurrentStatus: current.Status}
	}

	detail, err := s.repo.GetDetail(ctx, applicationID)
	if err != nil {
		return ReviewResult{}, apperr.Internal("Server error during review process.", err)
	}
	counts, err := s.repo.CountByCompany(ctx, company.ID)
	if err != nil {
		return ReviewResult{}, apperr.Internal("Server error during review process.", err)
	}

	if s.events != nil {
		s.events.ApplicationReviewed(ctx, detail)
	}
	return ReviewResult{Application: detail, Dashboard: counts}, nil
}

// ListByCompany returns all applications to the acting company's jobs
// together with the status recount for its dashboard.
func (s *ApplicationService) ListByCompany(ctx context.Context, company types.User) ([]types.ApplicationDetail, types.StatusCounts, error) {
	if !company.IsCompany() {
		return nil, types.StatusCounts{}, apperr.Authorization("Access denied. Only companies can view job applications.")
	}

	details, err := s.repo.ListDetailsByCompany(ctx, company.ID)
	if err != nil {
		return nil, types.StatusCounts{}, apperr.Internal("Server error while fetching applications.", err)
	}
	counts, err := s.repo.CountByCompany(ctx, company.ID)
	if err != nil {
		return nil, types.StatusCounts{}, apperr.Internal("Server error while fetching applications.", err)
	}
	return details, counts, nil
}
