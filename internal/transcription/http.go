package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// HTTPTranscriber calls an OpenAI-compatible /audio/transcriptions endpoint,
// such as a local whisper server that keeps the model loaded.
type HTTPTranscriber struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewHTTPTranscriber creates a client for baseURL (e.g. http://localhost:8000/v1).
func NewHTTPTranscriber(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *HTTPTranscriber {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &HTTPTranscriber{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		logger:     logger.With("component", "whisper_http"),
	}
}

// Transcribe uploads audioPath and returns the verbose_json segments.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]types.Segment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	fields := map[string]string{
		"model":                     t.model,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "segment",
	}
	if language != "" {
		fields["language"] = language
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out WhisperOutput
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	segments := convertSegments(out.Segments)
	t.logger.Info("transcription completed", "segments", len(segments), "duration", out.Duration)
	return segments, nil
}
