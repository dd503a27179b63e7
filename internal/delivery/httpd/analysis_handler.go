package httpd

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files, err := readUploadFiles(r.MultipartForm.File["files"])
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded files")
		writeError(w, http.StatusBadRequest, "Failed to read uploaded files")
		return
	}

	resp, err := h.checkerService.StartAnalysis(r.Context(), files)
	if err != nil {
		h.handleAnalysisError(w, err)
		return
	}

	writeSuccess(w, http.StatusAccepted, resp)
}

func readUploadFiles(headers []*multipart.FileHeader) ([]integration.UploadFile, error) {
	files := make([]integration.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, integration.UploadFile{Name: fh.Filename, Content: content})
	}
	return files, nil
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.checkerService.Snapshot())
}

func (h *Handler) CancelCurrent(w http.ResponseWriter, r *http.Request) {
	h.checkerService.Cancel()
	writeSuccess(w, http.StatusOK, h.checkerService.Snapshot())
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.checkerService.History())
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, models.ResultsResponse{
		Results: models.NewResultViews(h.checkerService.Results()),
		Summary: h.checkerService.Summary(),
	})
}

func (h *Handler) GetDebugView(w http.ResponseWriter, r *http.Request) {
	index, err := utils.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.checkerService.Debug(index)
	if err != nil {
		h.handleAnalysisError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", repository.DefaultListLimit)
	if limit <= 0 || limit > 100 {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	runs, err := h.checkerService.Runs(r.Context(), limit)
	if err != nil {
		h.handleAnalysisError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, runs)
}

func (h *Handler) handleAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoFiles):
		writeError(w, http.StatusBadRequest, "At least one file is required")
	case errors.Is(err, session.ErrResultIndexOutOfRange):
		writeError(w, http.StatusNotFound, "Result index out of range")
	case errors.Is(err, repository.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Stored run not found")
	case errors.Is(err, integration.ErrUploadFailed):
		h.logger.Error().Err(err).Msg("Analysis service upload error")
		writeError(w, http.StatusBadGateway, "Analysis service unavailable")
	default:
		h.logger.Error().Err(err).Msg("Analysis error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
