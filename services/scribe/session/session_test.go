package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amit15110003/asha-health-project/services/scribe/entity"
	"github.com/amit15110003/asha-health-project/services/scribe/recording"
)

type fakeDevice struct {
	chunks chan []byte
	fail   bool
}

func (d *fakeDevice) Start(_ context.Context) error {
	if d.fail {
		return errors.New("device busy")
	}
	return nil
}

func (d *fakeDevice) Chunks() <-chan []byte { return d.chunks }

func (d *fakeDevice) Stop() error {
	close(d.chunks)
	return nil
}

type fakeTranscriber struct {
	mu     sync.Mutex
	calls  int
	result *entity.TranscriptionResult
	err    error
	block  chan struct{}
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (*entity.TranscriptionResult, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	result, err := f.result, f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return result, err
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePlayback struct {
	mu       sync.Mutex
	created  int
	released []string
}

func (p *fakePlayback) Create(_ string, _ []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	return fmt.Sprintf("mem://%d", p.created), nil
}

func (p *fakePlayback) Release(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, url)
}

func (p *fakePlayback) releaseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.released)
}

func newTestController(tr Transcriber) (*Controller, *fakePlayback, *int) {
	log := slog.New(slog.DiscardHandler)
	acquired := 0
	factory := func() recording.Device {
		acquired++
		return &fakeDevice{chunks: make(chan []byte, 4)}
	}
	playback := &fakePlayback{}
	rec := recording.NewRecorder(factory, log)
	return NewController(rec, tr, playback, log), playback, &acquired
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func okResult() *entity.TranscriptionResult {
	return &entity.TranscriptionResult{Transcript: "hello doctor", Confidence: 0.97}
}

func TestController_RecordTranscribeFlow(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, _, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if c.Snapshot().Phase != PhaseRecording {
		t.Fatalf("expected recording phase, got %s", c.Snapshot().Phase)
	}

	c.StopRecording(ctx)
	waitFor(t, "ready phase", func() bool { return c.Snapshot().Phase == PhaseReady })

	state := c.Snapshot()
	if state.Result == nil || state.Result.Transcript != "hello doctor" {
		t.Errorf("unexpected result: %+v", state.Result)
	}
	if state.AudioURL == "" || state.AudioFileName != "recording.wav" {
		t.Errorf("expected playback state, got %+v", state)
	}
}

func TestController_StartWhileRecordingIsNoOp(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, _, acquired := newTestController(tr)
	ctx := context.Background()

	if err := c.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if err := c.StartRecording(ctx); err != nil {
		t.Errorf("second StartRecording should be ignored, got %v", err)
	}
	if c.Snapshot().Phase != PhaseRecording {
		t.Errorf("phase changed: %s", c.Snapshot().Phase)
	}
	if *acquired != 1 {
		t.Errorf("expected a single device acquisition, got %d", *acquired)
	}
}

func TestController_DeviceFailureMovesToErrored(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	log := slog.New(slog.DiscardHandler)
	factory := func() recording.Device {
		return &fakeDevice{chunks: make(chan []byte), fail: true}
	}
	c := NewController(recording.NewRecorder(factory, log), tr, &fakePlayback{}, log)

	if err := c.StartRecording(context.Background()); err == nil {
		t.Fatal("expected device error")
	}
	state := c.Snapshot()
	if state.Phase != PhaseErrored {
		t.Errorf("expected errored phase, got %s", state.Phase)
	}
	if state.ErrorMessage != entity.ErrMicrophoneUnavailable.Error() {
		t.Errorf("unexpected error message %q", state.ErrorMessage)
	}
}

func TestController_FailedTranscriptionKeepsAudioForRetry(t *testing.T) {
	tr := &fakeTranscriber{err: &entity.TranscriptionError{StatusCode: 500, Message: "upstream down"}}
	c, _, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.Upload(ctx, "visit.wav", "audio/wav", []byte("pcm")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	waitFor(t, "errored phase", func() bool { return c.Snapshot().Phase == PhaseErrored })

	state := c.Snapshot()
	if state.AudioURL == "" {
		t.Error("audio URL should survive a failed transcription")
	}
	if state.ErrorMessage == "" {
		t.Error("expected an error message")
	}

	// retry resubmits the stored payload
	tr.mu.Lock()
	tr.err = nil
	tr.result = okResult()
	tr.mu.Unlock()

	if err := c.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	waitFor(t, "ready phase after retry", func() bool { return c.Snapshot().Phase == PhaseReady })
	if tr.callCount() != 2 {
		t.Errorf("expected 2 transcription requests, got %d", tr.callCount())
	}
}

func TestController_RetryWithoutPayloadIsNoOp(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, _, _ := newTestController(tr)

	if err := c.Retry(context.Background()); err != nil {
		t.Errorf("Retry without payload should be a quiet no-op, got %v", err)
	}
	if phase := c.Snapshot().Phase; phase != PhaseIdle {
		t.Errorf("phase changed to %s", phase)
	}
	if tr.callCount() != 0 {
		t.Errorf("no request should have been sent, got %d", tr.callCount())
	}
}

func TestController_InvalidUploadErrorsWithoutRequest(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, playback, _ := newTestController(tr)

	err := c.Upload(context.Background(), "notes.txt", "text/plain", []byte("nope"))
	if !errors.Is(err, entity.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	state := c.Snapshot()
	if state.Phase != PhaseErrored {
		t.Errorf("expected errored phase, got %s", state.Phase)
	}
	if tr.callCount() != 0 {
		t.Error("validation failure must not reach the transcriber")
	}
	playback.mu.Lock()
	created := playback.created
	playback.mu.Unlock()
	if created != 0 {
		t.Error("validation failure must not create playback resources")
	}
}

func TestController_LoadingBlocksNewSources(t *testing.T) {
	tr := &fakeTranscriber{result: okResult(), block: make(chan struct{})}
	c, _, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.Upload(ctx, "visit.wav", "audio/wav", []byte("pcm")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if c.Snapshot().Phase != PhaseLoading {
		t.Fatalf("expected loading, got %s", c.Snapshot().Phase)
	}

	if err := c.Upload(ctx, "other.wav", "audio/wav", []byte("pcm")); err == nil {
		t.Error("upload while loading should be rejected")
	}
	if err := c.StartRecording(ctx); err == nil {
		t.Error("recording while loading should be rejected")
	}
	if err := c.Retry(ctx); err == nil {
		t.Error("retry while loading should be rejected")
	}
	if tr.callCount() != 1 {
		t.Errorf("expected a single in-flight request, got %d", tr.callCount())
	}

	close(tr.block)
	waitFor(t, "ready phase", func() bool { return c.Snapshot().Phase == PhaseReady })
}

func TestController_ClearReleasesPlaybackAndResult(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, playback, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.Upload(ctx, "visit.wav", "audio/wav", []byte("pcm")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	waitFor(t, "ready phase", func() bool { return c.Snapshot().Phase == PhaseReady })
	url := c.Snapshot().AudioURL

	c.Clear()

	state := c.Snapshot()
	if state.Phase != PhaseIdle || state.Result != nil || state.AudioURL != "" || state.ErrorMessage != "" {
		t.Errorf("clear left state behind: %+v", state)
	}
	if playback.releaseCount() != 1 || playback.released[0] != url {
		t.Errorf("playback URL %q not released: %v", url, playback.released)
	}
	if err := c.Retry(ctx); err != nil || tr.callCount() != 1 {
		t.Error("retry payload should be gone after clear")
	}
}

func TestController_ReplacementReleasesPriorPlayback(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, playback, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.Upload(ctx, "first.wav", "audio/wav", []byte("one")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	waitFor(t, "first result", func() bool { return c.Snapshot().Phase == PhaseReady })
	first := c.Snapshot().AudioURL

	if err := c.Upload(ctx, "second.wav", "audio/wav", []byte("two")); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	waitFor(t, "second result", func() bool {
		s := c.Snapshot()
		return s.Phase == PhaseReady && s.AudioFileName == "second.wav"
	})

	if playback.releaseCount() != 1 || playback.released[0] != first {
		t.Errorf("prior playback URL %q not released on replacement: %v", first, playback.released)
	}
}

func TestController_StaleCompletionIgnoredAfterClear(t *testing.T) {
	tr := &fakeTranscriber{result: okResult(), block: make(chan struct{})}
	c, _, _ := newTestController(tr)
	ctx := context.Background()

	if err := c.Upload(ctx, "visit.wav", "audio/wav", []byte("pcm")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	c.Clear()
	close(tr.block)

	// give the stale goroutine a chance to land
	time.Sleep(50 * time.Millisecond)
	if state := c.Snapshot(); state.Phase != PhaseIdle || state.Result != nil {
		t.Errorf("stale completion mutated cleared session: %+v", state)
	}
}

func TestController_DragOverIsOrthogonal(t *testing.T) {
	tr := &fakeTranscriber{result: okResult()}
	c, _, _ := newTestController(tr)

	c.SetDragOver(true)
	if s := c.Snapshot(); !s.IsDragOver || s.Phase != PhaseIdle {
		t.Errorf("drag-over should overlay the phase: %+v", s)
	}
	c.Clear()
	if !c.Snapshot().IsDragOver {
		t.Error("clear should not touch the drag-over flag")
	}
	c.SetDragOver(false)
	if c.Snapshot().IsDragOver {
		t.Error("drag-over flag should be off")
	}
}
