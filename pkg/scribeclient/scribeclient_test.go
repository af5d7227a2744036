package scribeclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

func TestTranscribeUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transcribe" {
			t.Errorf("path = %s", r.URL.Path)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "recording.wav" {
			t.Errorf("filename = %s", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "pcm-bytes" {
			t.Errorf("payload = %q", data)
		}

		json.NewEncoder(w).Encode(entity.TranscriptionResult{
			Transcript:   "hello",
			SpeakerCount: 1,
			Speakers:     []int{0},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, slog.New(slog.DiscardHandler))
	result, err := c.Transcribe(context.Background(), []byte("pcm-bytes"), "recording.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Transcript != "hello" || result.SpeakerCount != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestTranscribeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "transcription failed"})
	}))
	defer srv.Close()

	c := New(srv.URL, slog.New(slog.DiscardHandler))
	_, err := c.Transcribe(context.Background(), []byte("x"), "a.wav")

	var terr *entity.TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TranscriptionError", err)
	}
	if terr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", terr.StatusCode)
	}
}

func TestGenerateNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/generate-note" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req entity.GenerateNoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Transcript != "Speaker 0: hello" {
			t.Errorf("transcript = %q", req.Transcript)
		}

		json.NewEncoder(w).Encode(entity.GenerateNoteResponse{
			Success: true,
			Note: &entity.SoapNote{
				PatientInfo: &entity.PatientInfo{Name: "Jane Roe"},
				Note:        &entity.SoapSections{Subjective: "headache"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, slog.New(slog.DiscardHandler))
	resp, err := c.GenerateNote(context.Background(), "Speaker 0: hello")
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}
	if !resp.Success || resp.Note == nil || resp.Note.PatientInfo.Name != "Jane Roe" {
		t.Errorf("resp = %+v", resp)
	}
}
