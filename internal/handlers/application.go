package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
)

// ApplicationHandler provides application creation, review and listing
// endpoints.
type ApplicationHandler struct {
	applications *services.ApplicationService
	logger       *zap.Logger
}

func NewApplicationHandler(applications *services.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

// RequestRouter registers the application action routes. All routes
// require an authenticated user in the request context.
func RequestRouter(r chi.Router, applications *services.ApplicationService, logger *zap.Logger) {
	handler := NewApplicationHandler(applications, logger)

	r.Post("/{status}/{jobID}", handler.Create)
	r.Put("/review/{status}/{applicationID}", handler.Review)
}

// ApplicationListRouter registers the company-side listing route.
func ApplicationListRouter(r chi.Router, applications *services.ApplicationService, logger *zap.Logger) {
	handler := NewApplicationHandler(applications, logger)

	r.Get("/my-jobs", handler.ListForCompany)
}

type CreateApplicationResponse struct {
	Message     string                  `json:"message"`
	Application types.ApplicationDetail `json:"application"`
	Warning     string                  `json:"warning,omitempty"`
}

type ReviewApplicationResponse struct {
	Message        string                  `json:"message"`
	Application    types.ApplicationDetail `json:"application"`
	DashboardStats types.StatusCounts      `json:"dashboardStats"`
}

type ApplicationListResponse struct {
	Message           string                    `json:"message"`
	TotalApplications int                       `json:"totalApplications"`
	StatusCounts      types.StatusCounts        `json:"statusCounts"`
	Applications      []types.ApplicationDetail `json:"applications"`
}

// Create handles POST /api/request/{status}/{jobID}.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	status := types.ApplicationStatus(chi.URLParam(r, "status"))
	if !types.ValidInitialStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status. Only 'ignored' or 'interested' are allowed.")
		return
	}
	jobID, err := strconv.Atoi(chi.URLParam(r, "jobID"))
	if err != nil || jobID < 1 {
		writeError(w, http.StatusBadRequest, "Invalid job ID.")
		return
	}

	result, err := h.applications.Create(r.Context(), user, jobID, status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := CreateApplicationResponse{
		Message:     createMessage(status),
		Application: result.Application,
	}
	if len(result.MissingSkills) > 0 {
		resp.Warning = fmt.Sprintf("You are missing some required skills: %s", strings.Join(result.MissingSkills, ", "))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func createMessage(status types.ApplicationStatus) string {
	if status == types.StatusInterested {
		return "Interest shown successfully! The company will review your application."
	}
	return "Job ignored successfully."
}

// Review handles PUT /api/request/review/{status}/{applicationID}.
func (h *ApplicationHandler) Review(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	status := types.ApplicationStatus(chi.URLParam(r, "status"))
	if !types.ValidReviewStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status. Use 'accepted' or 'rejected'.")
		return
	}
	applicationID, err := strconv.Atoi(chi.URLParam(r, "applicationID"))
	if err != nil || applicationID < 1 {
		writeError(w, http.StatusBadRequest, "Invalid application ID.")
		return
	}

	result, err := h.applications.Review(r.Context(), user, applicationID, status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ReviewApplicationResponse{
		Message:        fmt.Sprintf("Application %s successfully!", status),
		Application:    result.Application,
		DashboardStats: result.Dashboard,
	})
}

// ListForCompany handles GET /api/applications/my-jobs.
func (h *ApplicationHandler) ListForCompany(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	details, counts, err := h.applications.ListByCompany(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ApplicationListResponse{
		Message:           "Applications fetched successfully",
		TotalApplications: len(details),
		StatusCounts:      counts,
		Applications:      details,
	})
}
