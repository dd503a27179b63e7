package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/rs/zerolog"
)

// UploadFile - один архив для отправки на проверку.
type UploadFile struct {
	Name    string
	Content []byte
}

type AnalysisClient interface {
	CheckPlagiarism(ctx context.Context, files []UploadFile) (string, error)
}

type analysisClient struct {
	baseURL        string
	uploadEndpoint string
	timeout        time.Duration
	client         *http.Client
	logger         zerolog.Logger
}

func NewAnalysisClient(baseURL, uploadEndpoint string, timeout time.Duration, logger zerolog.Logger) AnalysisClient {
	return &analysisClient{
		baseURL:        baseURL,
		uploadEndpoint: uploadEndpoint,
		timeout:        timeout,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CheckPlagiarism отправляет все файлы одним multipart-запросом и возвращает session_id.
// Повторных попыток нет.
func (c *analysisClient) CheckPlagiarism(ctx context.Context, files []UploadFile) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no files selected", ErrUploadFailed)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Content)); err != nil {
			return "", fmt.Errorf("failed to copy file content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	size := buf.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadEndpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: analysis service returned status %d: %s", ErrUploadFailed, resp.StatusCode, string(body))
	}

	var out models.CheckPlagiarismResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrUploadFailed, err)
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("%w: response has no session_id", ErrUploadFailed)
	}

	c.logger.Info().
		Str("session_id", out.SessionID).
		Int("files", len(files)).
		Int("bytes", size).
		Msg("Files uploaded for analysis")

	return out.SessionID, nil
}

// ReadUploadFiles читает архивы с диска.
func ReadUploadFiles(paths []string) ([]UploadFile, error) {
	files := make([]UploadFile, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, UploadFile{Name: filepath.Base(p), Content: content})
	}
	return files, nil
}

// FileNames - имена в порядке загрузки.
func FileNames(files []UploadFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
