// Package openai synthesizes structured SOAP notes from consultation
// transcripts via OpenAI's chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/amit15110003/asha-health-project/config/scribe"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

// systemPrompt demands JSON-only output in the SoapNote shape. The low
// sampling temperature below keeps the output parseable.
const systemPrompt = `You are a medical assistant that extracts structured patient information and generates detailed SOAP (Subjective, Objective, Assessment, Plan) notes from conversation transcripts between patients and medical staff.

IMPORTANT: Return ONLY valid JSON without any markdown formatting, backticks, or additional text. The response must be parseable JSON.

Return the output in the following JSON format:
{
  "patient_info": {
    "name": "Full Name",
    "date_of_birth": "YYYY-MM-DD",
    "age": "Age in years",
    "emergency_contact": {
      "name": "Contact Name",
      "phone": "Phone Number"
    },
    "insurance": {
      "provider": "Insurance Name",
      "primary_holder": "Patient or Spouse"
    },
    "preferred_pharmacy": "Pharmacy Name"
  },
  "soap_note": {
    "S": "Detailed subjective information from patient...",
    "O": "Objective observations and measurements...",
    "A": "Assessment and clinical reasoning...",
    "P": "Plan for treatment and follow-up..."
  }
}`

const temperature = 0.3

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

func New(cfg *config.OpenAIConfig, log *slog.Logger) *Client {
	log.Debug("creating openai client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
		slog.Bool("api_key_set", cfg.APIKey != ""))
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Synthesize sends the transcript to the language model and parses the
// returned JSON into a SoapNote. Code fences are stripped before parsing;
// unparseable content and missing sections come back as SynthesisError,
// never as a partial note.
func (c *Client) Synthesize(ctx context.Context, transcript string) (*entity.SoapNote, error) {
	c.log.Info("synthesizing note", slog.Int("transcript_length", len(transcript)))

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Extract patient info and generate a SOAP note from this consultation transcript:\n\n" + transcript},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, &entity.SynthesisError{Reason: entity.SynthesisProvider, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &entity.SynthesisError{Reason: entity.SynthesisProvider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("openai request failed", slog.String("error", err.Error()))
		return nil, &entity.SynthesisError{Reason: entity.SynthesisProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.log.Error("openai returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(raw)))
		return nil, &entity.SynthesisError{
			Reason:     entity.SynthesisProvider,
			RawContent: string(raw),
			Err:        fmt.Errorf("openai api error: status %d", resp.StatusCode),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &entity.SynthesisError{Reason: entity.SynthesisMalformed, Err: err}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		c.log.Error("openai response had no content")
		return nil, &entity.SynthesisError{
			Reason: entity.SynthesisMalformed,
			Err:    fmt.Errorf("no content received"),
		}
	}

	content := parsed.Choices[0].Message.Content
	cleaned := stripCodeFences(content)

	var note entity.SoapNote
	if err := json.Unmarshal([]byte(cleaned), &note); err != nil {
		c.log.Error("failed to parse note JSON", slog.String("error", err.Error()))
		return nil, &entity.SynthesisError{
			Reason:     entity.SynthesisMalformed,
			RawContent: content,
			Err:        err,
		}
	}

	if note.PatientInfo == nil || note.Note == nil {
		c.log.Error("note missing top-level sections")
		return nil, &entity.SynthesisError{
			Reason:     entity.SynthesisIncomplete,
			RawContent: content,
			Err:        fmt.Errorf("missing patient_info or soap_note"),
		}
	}

	c.log.Info("note synthesized successfully")
	return &note, nil
}

// stripCodeFences removes the ```json / ``` markers some model responses
// wrap around the JSON body.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
