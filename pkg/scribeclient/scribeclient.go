// Package scribeclient is an HTTP client for the scribe gateway, used by
// the command line recorder to ship captured audio off for transcription.
package scribeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	log.Debug("creating scribe client", slog.String("base_url", baseURL))
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

// Transcribe uploads the audio as a multipart form and decodes the
// normalized transcription result.
func (c *Client) Transcribe(ctx context.Context, audioBytes []byte, fileName string) (*entity.TranscriptionResult, error) {
	c.log.Info("Transcribe called",
		slog.String("file", fileName),
		slog.Int("audio_size", len(audioBytes)))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", fileName)
	if err != nil {
		c.log.Error("failed to create form file", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audioBytes); err != nil {
		c.log.Error("failed to write audio payload", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		c.log.Error("failed to finalize multipart body", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := c.baseURL + "/api/v1/transcribe"
	c.log.Debug("sending POST request", slog.String("url", url))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed",
			slog.String("error", err.Error()),
			slog.String("url", url))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("scribe gateway returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)))
		return nil, &entity.TranscriptionError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var result entity.TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Error("failed to decode response", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.log.Info("transcription received",
		slog.Int("speaker_count", result.SpeakerCount),
		slog.Int("segments", len(result.SpeakerSegments)))
	return &result, nil
}

// GenerateNote posts a transcript and decodes the structured note.
func (c *Client) GenerateNote(ctx context.Context, transcript string) (*entity.GenerateNoteResponse, error) {
	c.log.Info("GenerateNote called", slog.Int("transcript_length", len(transcript)))

	jsonData, err := json.Marshal(entity.GenerateNoteRequest{Transcript: transcript})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/v1/generate-note"
	c.log.Debug("sending POST request", slog.String("url", url))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed",
			slog.String("error", err.Error()),
			slog.String("url", url))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("scribe gateway returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result entity.GenerateNoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Error("failed to decode response", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.log.Info("note received", slog.Bool("success", result.Success))
	return &result, nil
}
