package httpd

import (
	"net/http"
	"strconv"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadMemory = 32 << 20

type Handler struct {
	checkerService service.CheckerService
	startedAt      time.Time
	logger         zerolog.Logger
}

func NewHandler(checkerService service.CheckerService, logger zerolog.Logger) *Handler {
	return &Handler{
		checkerService: checkerService,
		startedAt:      time.Now(),
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/analyses", func(r chi.Router) {
			r.Post("/", h.StartAnalysis)
			r.Get("/current", h.GetCurrent)
			r.Delete("/current", h.CancelCurrent)
			r.Get("/current/history", h.GetHistory)
			r.Get("/current/results", h.GetResults)
			r.Get("/current/results/{index}/debug", h.GetDebugView)
		})

		api.Get("/runs", h.ListRuns)
	})
}

// Вспомогательные функции
func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	_ = utils.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
