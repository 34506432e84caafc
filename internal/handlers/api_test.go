package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/internal/store"
	"github.com/jobportal/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore backs the full router with in-memory tables so the HTTP
// surface can be exercised end to end.
type memoryStore struct {
	users *fakeUserRepo

	nextJobID int
	jobs      map[int]types.Job

	nextAppID int
	apps      map[int]types.Application
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     newFakeUserRepo(),
		nextJobID: 1,
		jobs:      map[int]types.Job{},
		nextAppID: 1,
		apps:      map[int]types.Application{},
	}
}

type memoryJobRepo struct{ s *memoryStore }

func (r memoryJobRepo) GetByID(_ context.Context, id int) (types.Job, error) {
	job, ok := r.s.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r memoryJobRepo) Create(_ context.Context, job types.Job) (types.Job, error) {
	job.ID = r.s.nextJobID
	r.s.nextJobID++
	r.s.jobs[job.ID] = job
	return job, nil
}

func (r memoryJobRepo) ListUnactedForCandidate(_ context.Context, candidateID int) ([]types.JobWithCompany, error) {
	acted := map[int]bool{}
	for _, app := range r.s.apps {
		if app.CandidateID == candidateID {
			acted[app.JobID] = true
		}
	}

	jobs := []types.JobWithCompany{}
	for _, job := range r.s.jobs {
		if !acted[job.ID] {
			jobs = append(jobs, r.s.joinCompany(job))
		}
	}
	// Newest first; ids are assigned in creation order.
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID > jobs[j].ID })
	return jobs, nil
}

func (r memoryJobRepo) CountActedForCandidate(_ context.Context, candidateID int) (int, error) {
	count := 0
	for _, app := range r.s.apps {
		if app.CandidateID == candidateID {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) joinCompany(job types.Job) types.JobWithCompany {
	joined := types.JobWithCompany{Job: job}
	if company, ok := s.users.users[job.CompanyID]; ok && company.Company != nil {
		joined.Company = types.CompanySummary{
			ID:             company.ID,
			CompanyName:    company.Company.CompanyName,
			Industry:       company.Company.Industry,
			ProfilePicture: company.ProfilePicture,
		}
	}
	return joined
}

func (s *memoryStore) detail(app types.Application) types.ApplicationDetail {
	detail := types.ApplicationDetail{Application: app}
	if job, ok := s.jobs[app.JobID]; ok {
		joined := s.joinCompany(job)
		detail.Job = joined.Job
		detail.Company = joined.Company
	}
	if candidate, ok := s.users.users[app.CandidateID]; ok && candidate.Student != nil {
		detail.Candidate = types.CandidateSummary{
			ID:             candidate.ID,
			FirstName:      candidate.FirstName,
			LastName:       candidate.LastName,
			Email:          candidate.Email,
			Gender:         candidate.Student.Gender,
			Skills:         candidate.Student.Skills,
			ProfilePicture: candidate.ProfilePicture,
			ResumeKey:      candidate.Student.ResumeKey,
		}
	}
	return detail
}

type memoryAppRepo struct{ s *memoryStore }

func (r memoryAppRepo) Create(_ context.Context, app types.Application) (types.Application, error) {
	for _, existing := range r.s.apps {
		if existing.JobID == app.JobID && existing.CandidateID == app.CandidateID {
			return types.Application{}, store.ErrDuplicate
		}
	}
	app.ID = r.s.nextAppID
	r.s.nextAppID++
	r.s.apps[app.ID] = app
	return app, nil
}

func (r memoryAppRepo) GetByID(_ context.Context, id int) (types.Application, error) {
	app, ok := r.s.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r memoryAppRepo) GetByJobAndCandidate(_ context.Context, jobID, candidateID int) (types.Application, error) {
	for _, app := range r.s.apps {
		if app.JobID == jobID && app.CandidateID == candidateID {
			return app, nil
		}
	}
	return types.Application{}, store.ErrNotFound
}

func (r memoryAppRepo) UpdateStatusIfInterested(_ context.Context, id int, status types.ApplicationStatus) (bool, error) {
	app, ok := r.s.apps[id]
	if !ok || app.Status != types.StatusInterested {
		return false, nil
	}
	app.Status = status
	r.s.apps[id] = app
	return true, nil
}

func (r memoryAppRepo) GetDetail(_ context.Context, id int) (types.ApplicationDetail, error) {
	app, ok := r.s.apps[id]
	if !ok {
		return types.ApplicationDetail{}, store.ErrNotFound
	}
	return r.s.detail(app), nil
}

func (r memoryAppRepo) ListDetailsByCompany(_ context.Context, companyID int) ([]types.ApplicationDetail, error) {
	details := []types.ApplicationDetail{}
	for _, app := range r.s.apps {
		if app.CompanyID == companyID {
			details = append(details, r.s.detail(app))
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID > details[j].ID })
	return details, nil
}

func (r memoryAppRepo) CountByCompany(_ context.Context, companyID int) (types.StatusCounts, error) {
	counts := types.StatusCounts{}
	for _, app := range r.s.apps {
		if app.CompanyID != companyID {
			continue
		}
		switch app.Status {
		case types.StatusIgnored:
			counts.Ignored++
		case types.StatusInterested:
			counts.Interested++
		case types.StatusAccepted:
			counts.Accepted++
		case types.StatusRejected:
			counts.Rejected++
		}
		counts.Total++
	}
	return counts, nil
}

func newAPIRouter(t *testing.T) (*chi.Mux, *memoryStore) {
	t.Helper()
	backing := newMemoryStore()
	logger := zap.NewNop()

	users := services.NewUserService(backing.users)
	jobs := services.NewJobService(memoryJobRepo{s: backing})
	applications := services.NewApplicationService(memoryAppRepo{s: backing}, memoryJobRepo{s: backing}, nil)

	authenticator := NewAuthenticator(users, testJWTSecret)

	router := chi.NewRouter()
	router.Route("/api", func(api chi.Router) {
		HealthRouter(api)
		api.Route("/auth", func(r chi.Router) {
			AuthRouter(r, users, testJWTSecret, logger)
		})
		api.Route("/profile", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			ProfileRouter(r, users, nil, logger)
		})
		api.Route("/jobs", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			JobRouter(r, jobs, logger)
		})
		api.Route("/request", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			RequestRouter(r, applications, logger)
		})
		api.Route("/applications", func(r chi.Router) {
			r.Use(authenticator.RequireAuth)
			ApplicationListRouter(r, applications, logger)
		})
	})
	return router, backing
}

func request(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, router http.Handler, req SignupRequest) string {
	t.Helper()
	rec := postJSON(t, router, "/api/auth/signup", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/login", LoginRequest{Email: req.Email, Password: req.Password})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == tokenCookieName {
			return cookie.Value
		}
	}
	t.Fatal("login response did not set the token cookie")
	return ""
}

func companySignup(email string) SignupRequest {
	return SignupRequest{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       email,
		Password:    "secret123",
		Role:        types.RoleCompany,
		CompanyName: "Acme",
		Industry:    "Software",
	}
}

func TestHealth(t *testing.T) {
	router, _ := newAPIRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Server is running!", resp.Message)
}

func TestApplicationWorkflow(t *testing.T) {
	router, _ := newAPIRouter(t)

	companyToken := signupAndLogin(t, router, companySignup("hr@acme.com"))
	studentToken := signupAndLogin(t, router, studentSignup())

	// Company posts a job.
	rec := request(t, router, http.MethodPost, "/api/jobs", companyToken, CreateJobRequest{
		Title:           "Backend Engineer",
		Description:     "Build and operate backend services.",
		RequiredSkills:  []string{"Go", "Kubernetes"},
		Location:        "Remote",
		JobType:         types.JobTypeFullTime,
		ExperienceLevel: types.ExperienceMid,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CreateJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Job created successfully!", created.Message)
	jobID := created.Job.ID

	// Students cannot post jobs.
	rec = request(t, router, http.MethodPost, "/api/jobs", studentToken, CreateJobRequest{
		Title:           "Nope",
		Description:     "Students cannot create postings.",
		RequiredSkills:  []string{"go"},
		Location:        "Remote",
		JobType:         types.JobTypeFullTime,
		ExperienceLevel: types.ExperienceMid,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The job shows up in the student's feed with a partial match.
	rec = request(t, router, http.MethodGet, "/api/jobs/feed", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var feed FeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Equal(t, 1, feed.TotalJobs)
	assert.Equal(t, 0, feed.ExcludedJobs)
	assert.Equal(t, 50, feed.Jobs[0].MatchScore)
	assert.Equal(t, []string{"Go"}, feed.Jobs[0].MatchedSkills)

	// Student applies; the missing skill produces an advisory warning.
	rec = request(t, router, http.MethodPost, fmt.Sprintf("/api/request/interested/%d", jobID), studentToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var applied CreateApplicationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, "Interest shown successfully! The company will review your application.", applied.Message)
	assert.Equal(t, types.StatusInterested, applied.Application.Status)
	assert.Contains(t, applied.Warning, "Kubernetes")
	applicationID := applied.Application.ID

	// The applied job disappears from the feed and is counted as excluded.
	rec = request(t, router, http.MethodGet, "/api/jobs/feed", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Equal(t, 0, feed.TotalJobs)
	assert.Equal(t, 1, feed.ExcludedJobs)

	// A second application on the same job is rejected with the
	// existing status.
	rec = request(t, router, http.MethodPost, fmt.Sprintf("/api/request/ignored/%d", jobID), studentToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var dup ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dup))
	assert.Equal(t, "You have already interested this job.", dup.Message)
	assert.Equal(t, types.StatusInterested, dup.CurrentStatus)

	// The company reviews the application.
	rec = request(t, router, http.MethodPut, fmt.Sprintf("/api/request/review/accepted/%d", applicationID), companyToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reviewed ReviewApplicationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviewed))
	assert.Equal(t, "Application accepted successfully!", reviewed.Message)
	assert.Equal(t, types.StatusAccepted, reviewed.Application.Status)
	assert.Equal(t, 1, reviewed.DashboardStats.Accepted)

	// A second review is refused and the first decision stands.
	rec = request(t, router, http.MethodPut, fmt.Sprintf("/api/request/review/rejected/%d", applicationID), companyToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var conflict ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, types.StatusAccepted, conflict.CurrentStatus)

	// The company dashboard reflects the decision.
	rec = request(t, router, http.MethodGet, "/api/applications/my-jobs", companyToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing ApplicationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.TotalApplications)
	assert.Equal(t, types.StatusAccepted, listing.Applications[0].Status)
	assert.Equal(t, "ada@example.com", listing.Applications[0].Candidate.Email)
	assert.Equal(t, 1, listing.StatusCounts.Accepted)
	assert.Equal(t, 1, listing.StatusCounts.Total)
}

func TestApplicationRouteValidation(t *testing.T) {
	router, _ := newAPIRouter(t)
	studentToken := signupAndLogin(t, router, studentSignup())

	rec := request(t, router, http.MethodPost, "/api/request/interested/not-a-number", studentToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid job ID.", resp.Message)

	rec = request(t, router, http.MethodPost, "/api/request/maybe/1", studentToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid status. Only 'ignored' or 'interested' are allowed.", resp.Message)

	rec = request(t, router, http.MethodPost, "/api/request/interested/999", studentToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Job not found.", resp.Message)

	rec = request(t, router, http.MethodPut, "/api/request/review/accepted/not-a-number", studentToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid application ID.", resp.Message)
}

func TestFeedForbiddenForCompanies(t *testing.T) {
	router, _ := newAPIRouter(t)
	companyToken := signupAndLogin(t, router, companySignup("hr@acme.com"))

	rec := request(t, router, http.MethodGet, "/api/jobs/feed", companyToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Access denied. Only students can view job feed.", resp.Message)
}

func TestListForbiddenForStudents(t *testing.T) {
	router, _ := newAPIRouter(t)
	studentToken := signupAndLogin(t, router, studentSignup())

	rec := request(t, router, http.MethodGet, "/api/applications/my-jobs", studentToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Access denied. Only companies can view job applications.", resp.Message)
}

func TestProfileEndpoint(t *testing.T) {
	router, _ := newAPIRouter(t)
	studentToken := signupAndLogin(t, router, studentSignup())

	rec := request(t, router, http.MethodGet, "/api/profile", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Profile data", resp.Message)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	require.NotNil(t, resp.User.Student)
	assert.Equal(t, []string{"go", "sql"}, resp.User.Student.Skills)
}
