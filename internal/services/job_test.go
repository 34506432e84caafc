package services

import (
	"context"
	"testing"

	"github.com/jobportal/apiserver/internal/apperr"
	"github.com/jobportal/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedJobRepo struct {
	fakeJobRepo
	feed     []types.JobWithCompany
	excluded int
}

func (f *feedJobRepo) ListUnactedForCandidate(_ context.Context, _ int) ([]types.JobWithCompany, error) {
	return f.feed, nil
}

func (f *feedJobRepo) CountActedForCandidate(_ context.Context, _ int) (int, error) {
	return f.excluded, nil
}

func feedJob(id int, skills ...string) types.JobWithCompany {
	return types.JobWithCompany{
		Job: types.Job{
			ID:             id,
			Title:          "Job",
			CompanyID:      10,
			RequiredSkills: skills,
		},
		Company: types.CompanySummary{ID: 10, CompanyName: "Acme"},
	}
}

func TestJobCreateRejectsStudents(t *testing.T) {
	svc := NewJobService(&fakeJobRepo{jobs: map[int]types.Job{}})

	_, err := svc.Create(context.Background(), testStudent(5, "go"), types.Job{Title: "Backend"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.TypeAuthorization))
}

func TestJobCreateSetsOwner(t *testing.T) {
	svc := NewJobService(&fakeJobRepo{jobs: map[int]types.Job{}})

	job, err := svc.Create(context.Background(), testCompany(10), types.Job{Title: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, 10, job.CompanyID)
}

func TestFeedRejectsCompanies(t *testing.T) {
	svc := NewJobService(&feedJobRepo{})

	_, err := svc.Feed(context.Background(), testCompany(10))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.TypeAuthorization))
}

func TestFeedOrdersByScoreThenRecency(t *testing.T) {
	// Base order is newest first; the repo returns it that way.
	repo := &feedJobRepo{feed: []types.JobWithCompany{
		feedJob(3, "rust"),
		feedJob(2, "go", "sql"),
		feedJob(1, "go"),
	}}
	svc := NewJobService(repo)

	feed, err := svc.Feed(context.Background(), testStudent(5, "go"))
	require.NoError(t, err)
	require.Len(t, feed.Jobs, 3)

	assert.Equal(t, 1, feed.Jobs[0].ID)
	assert.Equal(t, 100, feed.Jobs[0].MatchScore)
	assert.Equal(t, 2, feed.Jobs[1].ID)
	assert.Equal(t, 50, feed.Jobs[1].MatchScore)
	assert.Equal(t, 3, feed.Jobs[2].ID)
	assert.Equal(t, 0, feed.Jobs[2].MatchScore)
}

func TestFeedTiesKeepNewestFirst(t *testing.T) {
	repo := &feedJobRepo{feed: []types.JobWithCompany{
		feedJob(3, "go"),
		feedJob(2, "go"),
		feedJob(1, "rust"),
	}}
	svc := NewJobService(repo)

	feed, err := svc.Feed(context.Background(), testStudent(5, "go"))
	require.NoError(t, err)
	require.Len(t, feed.Jobs, 3)

	assert.Equal(t, 3, feed.Jobs[0].ID)
	assert.Equal(t, 2, feed.Jobs[1].ID)
	assert.Equal(t, 1, feed.Jobs[2].ID)
}

func TestFeedStudentWithoutSkills(t *testing.T) {
	repo := &feedJobRepo{feed: []types.JobWithCompany{
		feedJob(1, "go"),
	}}
	svc := NewJobService(repo)

	student := types.User{ID: 5, Role: types.RoleStudent, Student: &types.StudentProfile{Gender: "other"}}
	feed, err := svc.Feed(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, feed.Jobs, 1)

	assert.Equal(t, 0, feed.Jobs[0].MatchScore)
	assert.Empty(t, feed.Jobs[0].MatchedSkills)
}

func TestFeedReportsExcludedCount(t *testing.T) {
	repo := &feedJobRepo{
		feed:     []types.JobWithCompany{feedJob(5, "go")},
		excluded: 2,
	}
	svc := NewJobService(repo)

	feed, err := svc.Feed(context.Background(), testStudent(5, "go"))
	require.NoError(t, err)

	assert.Len(t, feed.Jobs, 1)
	assert.Equal(t, 2, feed.ExcludedJobs)
}

func TestFeedMatchedSkills(t *testing.T) {
	repo := &feedJobRepo{feed: []types.JobWithCompany{
		feedJob(1, "Go", "PostgreSQL", "Docker"),
	}}
	svc := NewJobService(repo)

	feed, err := svc.Feed(context.Background(), testStudent(5, "go", "docker"))
	require.NoError(t, err)
	require.Len(t, feed.Jobs, 1)

	assert.Equal(t, []string{"Go", "Docker"}, feed.Jobs[0].MatchedSkills)
	assert.Equal(t, 67, feed.Jobs[0].MatchScore)
}
