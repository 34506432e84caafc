package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jobportal/apiserver/internal/services"
	"github.com/jobportal/apiserver/internal/storage"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
)

const (
	maxMultipartMemory = 8 << 20

	maxPictureBytes = 5 << 20
	maxResumeBytes  = 10 << 20

	pictureFormField = "picture"
	resumeFormField  = "resume"
)

// ProfileHandler serves the authenticated user's profile and its
// uploaded assets. Uploads require a configured object store; without
// one the upload routes report the feature as unavailable.
type ProfileHandler struct {
	users   *services.UserService
	storage *storage.Storage
	logger  *zap.Logger
}

func NewProfileHandler(users *services.UserService, store *storage.Storage, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, storage: store, logger: logger}
}

// ProfileRouter registers profile routes on the given router. All
// routes require an authenticated user in the request context.
func ProfileRouter(r chi.Router, users *services.UserService, store *storage.Storage, logger *zap.Logger) {
	handler := NewProfileHandler(users, store, logger)

	r.Get("/", handler.Get)
	r.Put("/picture", handler.UploadPicture)
	r.Put("/resume", handler.UploadResume)
	r.Get("/resume", handler.DownloadResume)
}

type ProfileResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type UploadResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "Profile data",
		User:    user,
	})
}

// UploadPicture handles PUT /api/profile/picture.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not enabled on this server.")
		return
	}

	data, filename, err := parseUpload(r, pictureFormField, maxPictureBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Profile picture must be an image file.")
		return
	}

	key := fmt.Sprintf("pictures/%d/%s%s", user.ID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		h.logger.Error("picture upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file upload.")
		return
	}
	if err := h.users.SetProfilePicture(r.Context(), user.ID, key); err != nil {
		h.logger.Error("picture update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file upload.")
		return
	}
	// The default picture is an external URL, not an object key.
	if old := user.ProfilePicture; strings.HasPrefix(old, "pictures/") {
		h.removeObject(r.Context(), old)
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message: "Profile picture updated successfully",
		Key:     key,
	})
}

// UploadResume handles PUT /api/profile/resume.
func (h *ProfileHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}
	if !user.IsStudent() {
		writeError(w, http.StatusForbidden, "Only students can upload a resume.")
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not enabled on this server.")
		return
	}

	data, filename, err := parseUpload(r, resumeFormField, maxResumeBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !strings.EqualFold(path.Ext(filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Resume must be a PDF file.")
		return
	}

	key := fmt.Sprintf("resumes/%d/%s.pdf", user.ID, uuid.NewString())
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		h.logger.Error("resume upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file upload.")
		return
	}
	if err := h.users.SetResumeKey(r.Context(), user.ID, key); err != nil {
		h.logger.Error("resume update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file upload.")
		return
	}
	if user.Student != nil && user.Student.ResumeKey != "" {
		h.removeObject(r.Context(), user.Student.ResumeKey)
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message: "Resume updated successfully",
		Key:     key,
	})
}

// DownloadResume handles GET /api/profile/resume.
func (h *ProfileHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNoToken)
		return
	}
	if !user.IsStudent() {
		writeError(w, http.StatusForbidden, "Only students have a resume.")
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not enabled on this server.")
		return
	}
	if user.Student == nil || user.Student.ResumeKey == "" {
		writeError(w, http.StatusNotFound, "No resume uploaded.")
		return
	}
	key := user.Student.ResumeKey

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		h.logger.Error("resume download failed", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error during file download.")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, object); err != nil {
		h.logger.Warn("resume stream interrupted", zap.String("key", key), zap.Error(err))
	}
}

// removeObject deletes a replaced upload. Losing the old object is not
// worth failing the request over, so errors are only logged.
func (h *ProfileHandler) removeObject(ctx context.Context, key string) {
	if err := h.storage.Delete(ctx, key); err != nil {
		h.logger.Warn("stale upload not removed", zap.String("key", key), zap.Error(err))
	}
}

func parseUpload(r *http.Request, field string, limit int64) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, "", errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	data, err := readFileLimited(file, limit)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}
	return data, nil
}
