package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthRouter registers the liveness route.
func HealthRouter(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Server is running!"})
	})
}
