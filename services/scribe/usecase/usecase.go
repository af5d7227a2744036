package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amit15110003/asha-health-project/pkg/metrics"
	"github.com/amit15110003/asha-health-project/services/scribe/audio"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

// Transcriber sends audio to the external speech-to-text provider.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBytes []byte, fileName string) (*entity.TranscriptionResult, error)
}

// NoteSynthesizer sends a transcript to the external language model.
type NoteSynthesizer interface {
	Synthesize(ctx context.Context, transcript string) (*entity.SoapNote, error)
}

type Usecase interface {
	TranscribeAudio(ctx context.Context, req *entity.TranscribeAudioRequest) (*entity.TranscriptionResult, error)
	GenerateNote(ctx context.Context, req *entity.GenerateNoteRequest) (*entity.GenerateNoteResponse, error)
}

type usecase struct {
	transcriber Transcriber
	synthesizer NoteSynthesizer
	log         *slog.Logger
}

func New(transcriber Transcriber, synthesizer NoteSynthesizer, log *slog.Logger) Usecase {
	return &usecase{
		transcriber: transcriber,
		synthesizer: synthesizer,
		log:         log,
	}
}

// TranscribeAudio re-validates the upload server-side, then delegates to
// the transcription provider. The provider client fills in the speaker
// segmentation before the result comes back here.
func (u *usecase) TranscribeAudio(ctx context.Context, req *entity.TranscribeAudioRequest) (*entity.TranscriptionResult, error) {
	if err := audio.Validate(req.FileName, req.MediaType, int64(len(req.Audio))); err != nil {
		u.log.Warn("rejected audio upload",
			slog.String("file", req.FileName),
			slog.String("media_type", req.MediaType),
			slog.String("error", err.Error()))
		return nil, err
	}

	metrics.DefaultMetrics.AudioBytesReceived.Add(float64(len(req.Audio)))
	metrics.DefaultMetrics.TranscriptionsTotal.Inc()

	started := time.Now()
	result, err := u.transcriber.Transcribe(ctx, req.Audio, req.FileName)
	if err != nil {
		metrics.DefaultMetrics.TranscriptionErrors.WithLabelValues("provider").Inc()
		u.log.Error("transcription failed",
			slog.String("file", req.FileName),
			slog.String("error", err.Error()))
		return nil, err
	}
	metrics.DefaultMetrics.TranscriptionLatency.Observe(time.Since(started).Seconds())

	u.log.Info("transcription completed",
		slog.String("file", req.FileName),
		slog.Float64("duration_seconds", result.Metadata.Duration),
		slog.Int("speaker_count", result.SpeakerCount),
		slog.Int("segments", len(result.SpeakerSegments)))
	return result, nil
}

// GenerateNote sends the transcript to the language model. Independent of
// the transcription flow; callable any number of times for one transcript.
func (u *usecase) GenerateNote(ctx context.Context, req *entity.GenerateNoteRequest) (*entity.GenerateNoteResponse, error) {
	if req.Transcript == "" {
		return nil, entity.ErrEmptyTranscript
	}

	metrics.DefaultMetrics.NotesRequested.Inc()

	started := time.Now()
	note, err := u.synthesizer.Synthesize(ctx, req.Transcript)
	if err != nil {
		reason := "provider"
		var synthErr *entity.SynthesisError
		if errors.As(err, &synthErr) {
			reason = string(synthErr.Reason)
		}
		metrics.DefaultMetrics.NoteErrors.WithLabelValues(reason).Inc()
		u.log.Error("note synthesis failed", slog.String("error", err.Error()))
		return nil, err
	}
	metrics.DefaultMetrics.NoteLatency.Observe(time.Since(started).Seconds())

	u.log.Info("note synthesized", slog.Int("transcript_length", len(req.Transcript)))
	return &entity.GenerateNoteResponse{Success: true, Note: note}, nil
}
