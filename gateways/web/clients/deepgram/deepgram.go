// Package deepgram transcribes prerecorded audio via Deepgram's listen API
// and normalizes the nested provider response into the service's flat
// transcription result shape.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	config "github.com/amit15110003/asha-health-project/config/scribe"
	"github.com/amit15110003/asha-health-project/services/scribe/diarize"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

// Clinical keyword boosts and search terms sent with every request.
var (
	keywords    = []string{"patient", "diagnosis", "treatment", "medication", "symptoms"}
	searchTerms = []string{"patient care", "medical history", "vital signs"}
)

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
	log        *slog.Logger
}

func New(cfg *config.DeepgramConfig, log *slog.Logger) *Client {
	log.Debug("creating deepgram client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
		slog.String("language", cfg.Language),
		slog.Bool("api_key_set", cfg.APIKey != ""))
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

// listenResponse is the subset of Deepgram's prerecorded response this
// service consumes. Everything else is discarded at the boundary.
type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
		Channels int     `json:"channels"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string        `json:"transcript"`
				Confidence float64       `json:"confidence"`
				Words      []entity.Word `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe uploads the audio payload and returns the normalized result
// with speaker segmentation filled in. Safe to retry: the only side effect
// is the provider call itself.
func (c *Client) Transcribe(ctx context.Context, audioBytes []byte, fileName string) (*entity.TranscriptionResult, error) {
	c.log.Info("transcribing audio",
		slog.String("file", fileName),
		slog.Int("bytes", len(audioBytes)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.listenURL(), bytes.NewReader(audioBytes))
	if err != nil {
		return nil, &entity.TranscriptionError{Message: "failed to build request", Err: err}
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(fileName))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("deepgram request failed", slog.String("error", err.Error()))
		return nil, &entity.TranscriptionError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("deepgram returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)))
		return nil, &entity.TranscriptionError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var parsed listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Error("failed to decode deepgram response", slog.String("error", err.Error()))
		return nil, &entity.TranscriptionError{Message: "malformed provider response", Err: err}
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		c.log.Error("deepgram response missing alternatives")
		return nil, &entity.TranscriptionError{Message: "malformed provider response: no alternatives"}
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	segments, speakers := diarize.Segment(alt.Words)

	result := &entity.TranscriptionResult{
		Transcript:      alt.Transcript,
		Confidence:      alt.Confidence,
		Words:           alt.Words,
		SpeakerCount:    len(speakers),
		Speakers:        speakers,
		SpeakerSegments: segments,
		Metadata: entity.Metadata{
			Duration: parsed.Metadata.Duration,
			Channels: parsed.Metadata.Channels,
		},
	}

	c.log.Info("transcription received",
		slog.Float64("confidence", result.Confidence),
		slog.Int("words", len(result.Words)),
		slog.Int("speaker_count", result.SpeakerCount))
	return result, nil
}

func (c *Client) listenURL() string {
	q := url.Values{}
	q.Set("model", c.model)
	q.Set("language", c.language)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	q.Set("paragraphs", "true")
	q.Set("diarize", "true")
	q.Set("numerals", "true")
	for _, kw := range keywords {
		q.Add("keywords", kw)
	}
	for _, term := range searchTerms {
		q.Add("search", term)
	}
	return c.baseURL + "/v1/listen?" + q.Encode()
}

var contentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

func contentTypeFor(fileName string) string {
	if mt, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mt
	}
	return "application/octet-stream"
}
