// Package session holds the single source of truth for a scribe session:
// recording, upload, transcription-in-flight, result and error state, plus
// the retry payload and the playback resource lifecycle.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/amit15110003/asha-health-project/pkg/gen"
	"github.com/amit15110003/asha-health-project/services/scribe/audio"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
	"github.com/amit15110003/asha-health-project/services/scribe/recording"
)

// Phase is the controller's primary state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRecording Phase = "recording"
	PhaseLoading   Phase = "loading"
	PhaseReady     Phase = "ready"
	PhaseErrored   Phase = "errored"
)

// State is the externally observable session state. The retry payload is
// deliberately not part of it.
type State struct {
	Phase         Phase
	IsDragOver    bool
	AudioURL      string
	AudioFileName string
	Result        *entity.TranscriptionResult
	ErrorMessage  string
}

// Transcriber sends an audio payload out for transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBytes []byte, fileName string) (*entity.TranscriptionResult, error)
}

// Playback creates and releases locally playable resources for an audio
// payload. Resources must be explicitly released; the controller never
// replaces a URL without releasing the previous one.
type Playback interface {
	Create(fileName string, audioBytes []byte) (string, error)
	Release(url string)
}

// Controller enforces the session's valid transitions. All state mutation
// happens through its methods; a mutex makes it a single-writer owner.
type Controller struct {
	id          uuid.UUID
	recorder    *recording.Recorder
	transcriber Transcriber
	playback    Playback
	log         *slog.Logger

	mu         sync.Mutex
	state      State
	lastAudio  []byte
	lastName   string
	generation uint64
}

func NewController(recorder *recording.Recorder, transcriber Transcriber, playback Playback, log *slog.Logger) *Controller {
	id := gen.UUID().Next()
	return &Controller{
		id:          id,
		recorder:    recorder,
		transcriber: transcriber,
		playback:    playback,
		log:         log.With(slog.String("session_id", id.String())),
		state:       State{Phase: PhaseIdle},
	}
}

// ID returns the session identifier.
func (c *Controller) ID() uuid.UUID { return c.id }

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetDragOver toggles the upload-affordance flag. It overlays every phase
// and never participates in transitions.
func (c *Controller) SetDragOver(over bool) {
	c.mu.Lock()
	c.state.IsDragOver = over
	c.mu.Unlock()
}

// StartRecording begins microphone capture. A no-op while already
// recording, rejected while a transcription is in flight.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseRecording:
		c.mu.Unlock()
		c.log.Debug("start ignored: already recording")
		return nil
	case PhaseLoading:
		c.mu.Unlock()
		return fmt.Errorf("transcription in progress")
	}
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	if err := c.recorder.Start(ctx); err != nil {
		c.mu.Lock()
		c.state.Phase = PhaseErrored
		c.state.ErrorMessage = entity.ErrMicrophoneUnavailable.Error()
		c.mu.Unlock()
		c.log.Error("recording start failed", slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	c.state.Phase = PhaseRecording
	c.mu.Unlock()
	c.log.Info("recording")
	return nil
}

// StopRecording finishes the capture, keeps the payload for retry, creates
// a playback resource for it, and submits it for transcription. A no-op
// when not recording.
func (c *Controller) StopRecording(ctx context.Context) {
	rec, ok := c.recorder.Stop()
	if !ok {
		return
	}

	c.mu.Lock()
	c.lastAudio = rec.Bytes
	c.lastName = rec.FileName
	c.replaceAudioLocked(rec.FileName, rec.Bytes)
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.state.Result = nil
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.log.Info("submitting recording for transcription", slog.Int("bytes", len(rec.Bytes)))
	go c.transcribe(ctx, generation, rec.Bytes, rec.FileName)
}

// Upload validates an external file and, on success, submits it for
// transcription. Validation failure moves to Errored and takes no further
// action. Rejected while recording or loading.
func (c *Controller) Upload(ctx context.Context, fileName, mediaType string, data []byte) error {
	c.mu.Lock()
	if c.state.Phase == PhaseRecording || c.state.Phase == PhaseLoading {
		c.mu.Unlock()
		return fmt.Errorf("session is busy")
	}

	if err := audio.Validate(fileName, mediaType, int64(len(data))); err != nil {
		c.state.Phase = PhaseErrored
		c.state.ErrorMessage = err.Error()
		c.mu.Unlock()
		c.log.Warn("upload rejected", slog.String("file", fileName), slog.String("error", err.Error()))
		return err
	}

	c.lastAudio = data
	c.lastName = fileName
	c.replaceAudioLocked(fileName, data)
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.state.Result = nil
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.log.Info("submitting upload for transcription",
		slog.String("file", fileName),
		slog.Int("bytes", len(data)))
	go c.transcribe(ctx, generation, data, fileName)
	return nil
}

// Retry resubmits the stored payload. A no-op when no payload exists;
// rejected while recording or loading.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase == PhaseRecording || c.state.Phase == PhaseLoading {
		c.mu.Unlock()
		return fmt.Errorf("session is busy")
	}
	if c.lastAudio == nil {
		c.mu.Unlock()
		c.log.Debug("retry ignored: no stored payload")
		return nil
	}

	payload := c.lastAudio
	name := c.lastName
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.log.Info("retrying transcription", slog.String("file", name))
	go c.transcribe(ctx, generation, payload, name)
	return nil
}

// Clear tears the session back to Idle: aborts any active capture,
// releases the playback resource, and drops the result, error and retry
// payload. A transcription still in flight is ignored when it lands.
func (c *Controller) Clear() {
	c.recorder.Abort()

	c.mu.Lock()
	if c.state.AudioURL != "" {
		c.playback.Release(c.state.AudioURL)
	}
	dragOver := c.state.IsDragOver
	c.state = State{Phase: PhaseIdle, IsDragOver: dragOver}
	c.lastAudio = nil
	c.lastName = ""
	c.generation++
	c.mu.Unlock()

	c.log.Info("session cleared")
}

func (c *Controller) transcribe(ctx context.Context, generation uint64, payload []byte, fileName string) {
	result, err := c.transcriber.Transcribe(ctx, payload, fileName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.log.Debug("stale transcription response ignored")
		return
	}

	if err != nil {
		c.state.Phase = PhaseErrored
		c.state.ErrorMessage = err.Error()
		c.log.Error("transcription failed", slog.String("error", err.Error()))
		return
	}

	c.state.Phase = PhaseReady
	c.state.Result = result
	c.state.ErrorMessage = ""
	c.log.Info("transcription ready",
		slog.Int("speaker_count", result.SpeakerCount),
		slog.Int("words", len(result.Words)))
}

// replaceAudioLocked releases the previous playback resource, if any, and
// creates one for the new payload. Caller holds c.mu.
func (c *Controller) replaceAudioLocked(fileName string, data []byte) {
	if c.state.AudioURL != "" {
		c.playback.Release(c.state.AudioURL)
		c.state.AudioURL = ""
	}

	url, err := c.playback.Create(fileName, data)
	if err != nil {
		c.log.Warn("failed to create playback resource", slog.String("error", err.Error()))
	} else {
		c.state.AudioURL = url
	}
	c.state.AudioFileName = fileName
}
