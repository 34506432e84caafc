package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
)

// JobHandler provides job posting and feed endpoints.
type JobHandler struct {
	jobs   *services.JobService
	logger *zap.Logger
}

func NewJobHandler(jobs *services.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// JobRouter registers job routes on the given router. All routes
// require an authenticated user in the request context.
func JobRouter(r chi.Router, jobs *services.JobService, logger *zap.Logger) {
	handler := NewJobHandler(jobs, logger)

	r.Post("/", handler.Create)
	r.Get("/feed", handler.Feed)
}

type CreateJobRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	RequiredSkills  []string              `json:"requiredSkills"`
	Location        string                `json:"location"`
	JobType         types.JobType         `json:"jobType"`
	ExperienceLevel types.ExperienceLevel `json:"experienceLevel"`
}

type CreateJobResponse struct {
	Message string    `json:"message"`
	Job     types.Job `json:"job"`
}

type FeedResponse struct {
	Message      string           `json:"message"`
	TotalJobs    int              `json:"totalJobs"`
	ExcludedJobs int              `json:"excludedJobs"`
	Jobs         []types.FeedItem `json:"jobs"`
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := req.validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	job, err := h.jobs.Create(r.Context(), user, types.Job{
		Title:           req.Title,
		Description:     req.Description,
		RequiredSkills:  req.RequiredSkills,
		Location:        req.Location,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateJobResponse{
		Message: "Job created successfully!",
		Job:     job,
	})
}

// Feed handles GET /api/jobs/feed.
func (h *JobHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	feed, err := h.jobs.Feed(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{
		Message:      "Job feed fetched successfully",
		TotalJobs:    len(feed.Jobs),
		ExcludedJobs: feed.ExcludedJobs,
		Jobs:         feed.Jobs,
	})
}
