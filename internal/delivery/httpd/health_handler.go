package httpd

import (
	"net/http"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{
		Status:    "healthy",
		Store:     h.checkerService.StoreDriver(),
		Phase:     string(h.checkerService.Snapshot().Phase),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	})
}
