package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	pkgjson "github.com/amit15110003/asha-health-project/pkg/json"
	"github.com/amit15110003/asha-health-project/services/scribe/consts"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
	"github.com/amit15110003/asha-health-project/services/scribe/usecase"
)

// multipart encoding overhead allowance on top of the audio ceiling
const maxRequestBytes = consts.MaxAudioSize + 1*1024*1024

type Handler struct {
	usecase usecase.Usecase
	log     *slog.Logger
}

func New(usecase usecase.Usecase, log *slog.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
	r.Post("/generate-note", h.GenerateNote)
	r.Get("/health", h.HealthCheck)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	pkgjson.WriteJSON(w, http.StatusOK, map[string]bool{"status": true})
}

// Transcribe accepts a multipart form with an `audio` file field and
// returns the normalized transcription result.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	h.log.Info("transcribe request received",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int64("content_length", r.ContentLength))

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.log.Warn("request body over the upload ceiling")
			pkgjson.WriteError(w, http.StatusRequestEntityTooLarge, entity.ErrFileTooLarge)
			return
		}
		h.log.Warn("invalid multipart form", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Warn("no audio file in request")
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("no audio file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("failed to read audio payload", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("failed to read audio file"))
		return
	}

	result, err := h.usecase.TranscribeAudio(r.Context(), &entity.TranscribeAudioRequest{
		Audio:     data,
		FileName:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeTranscribeError(w, err)
		return
	}

	h.log.Info("transcribe response sent",
		slog.String("file", header.Filename),
		slog.Int("speaker_count", result.SpeakerCount))
	pkgjson.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeTranscribeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUnsupportedFormat), errors.Is(err, entity.ErrFileTooLarge):
		pkgjson.WriteError(w, http.StatusBadRequest, err)
	default:
		var terr *entity.TranscriptionError
		if errors.As(err, &terr) {
			pkgjson.WriteError(w, http.StatusBadGateway, errors.New("transcription failed"))
			return
		}
		pkgjson.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

// GenerateNote sends the posted transcript to the language model and
// returns the structured note. Parse failures include the provider's raw
// content for diagnostics.
func (h *Handler) GenerateNote(w http.ResponseWriter, r *http.Request) {
	h.log.Info("generate-note request received", slog.String("remote_addr", r.RemoteAddr))

	var req entity.GenerateNoteRequest
	if err := pkgjson.ParseJSON(r, &req); err != nil {
		h.log.Warn("invalid request body", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	resp, err := h.usecase.GenerateNote(r.Context(), &req)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyTranscript) {
			pkgjson.WriteError(w, http.StatusBadRequest, err)
			return
		}

		var serr *entity.SynthesisError
		if errors.As(err, &serr) {
			body := map[string]string{"error": synthesisMessage(serr)}
			if serr.RawContent != "" {
				body["rawContent"] = serr.RawContent
			}
			pkgjson.WriteJSON(w, http.StatusInternalServerError, body)
			return
		}

		pkgjson.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	h.log.Info("generate-note response sent")
	pkgjson.WriteJSON(w, http.StatusOK, resp)
}

func synthesisMessage(err *entity.SynthesisError) string {
	switch err.Reason {
	case entity.SynthesisMalformed:
		return "Failed to parse SOAP response"
	case entity.SynthesisIncomplete:
		return "Invalid SOAP structure received"
	default:
		return "Failed to generate SOAP note"
	}
}
