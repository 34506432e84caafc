package services

import (
	"context"
	"sort"

	"github.com/jobportal/apiserver/internal/apperr"
	"github.com/jobportal/apiserver/types"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	GetByID(ctx context.Context, id int) (types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	ListUnactedForCandidate(ctx context.Context, candidateID int) ([]types.JobWithCompany, error)
	CountActedForCandidate(ctx context.Context, candidateID int) (int, error)
}

// JobService encapsulates posting and feed use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

// Create persists a new posting owned by the acting company account.
func (s *JobService) Create(ctx context.Context, company types.User, job types.Job) (types.Job, error) {
	if !company.IsCompany() {
		return types.Job{}, apperr.Authorization("Access denied. Only companies can create jobs.")
	}
	job.CompanyID = company.ID
	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return types.Job{}, apperr.Internal("Server error during job creation", err)
	}
	return created, nil
}

func (s *JobService) GetByID(ctx context.Context, id int) (types.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// FeedResult is a student's ranked feed together with the count of
// postings their past actions excluded.
type FeedResult struct {
	Jobs         []types.FeedItem
	ExcludedJobs int
}

// Feed builds the student's ranked job feed. Jobs the student has
// acted on in any status are excluded store-side; the remainder is
// scored by skill overlap and ordered by score descending, ties
// keeping the newest-posting-first base order.
func (s *JobService) Feed(ctx context.Context, student types.User) (FeedResult, error) {
	if !student.IsStudent() {
		return FeedResult{}, apperr.Authorization("Access denied. Only students can view job feed.")
	}

	jobs, err := s.repo.ListUnactedForCandidate(ctx, student.ID)
	if err != nil {
		return FeedResult{}, apperr.Internal("Server error while fetching job feed.", err)
	}
	excluded, err := s.repo.CountActedForCandidate(ctx, student.ID)
	if err != nil {
		return FeedResult{}, apperr.Internal("Server error while fetching job feed.", err)
	}

	skills := student.SkillList()
	feed := make([]types.FeedItem, 0, len(jobs))
	for _, job := range jobs {
		item := types.FeedItem{
			JobWithCompany: job,
			MatchedSkills:  []string{},
		}
		if len(skills) > 0 {
			item.MatchedSkills = matchedSkills(job.RequiredSkills, skills)
			item.MatchScore = matchScore(job.RequiredSkills, skills)
		}
		feed = append(feed, item)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].MatchScore > feed[j].MatchScore
	})
	return FeedResult{Jobs: feed, ExcludedJobs: excluded}, nil
}
