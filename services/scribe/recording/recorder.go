// Package recording owns the microphone capture lifecycle: acquire a
// device, buffer captured chunks in arrival order, and produce a single
// uploadable audio payload on stop.
package recording

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amit15110003/asha-health-project/services/scribe/consts"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

// Device is a capture source. Start begins capture, Chunks delivers raw
// PCM chunks in capture order, and Stop releases the device and closes the
// chunk channel. A Device is one-shot: it cannot be restarted after Stop.
type Device interface {
	Start(ctx context.Context) error
	Chunks() <-chan []byte
	Stop() error
}

// DeviceFactory produces a fresh Device for each recording.
type DeviceFactory func() Device

// Recording is the finished audio payload emitted once per recording.
type Recording struct {
	Bytes    []byte
	FileName string
}

// Recorder buffers chunks from an active Device. Only one recording may be
// active at a time; Stop is a no-op when idle.
type Recorder struct {
	newDevice DeviceFactory
	log       *slog.Logger

	mu        sync.Mutex
	device    Device
	chunks    [][]byte
	collected chan struct{}
	active    bool
}

func NewRecorder(factory DeviceFactory, log *slog.Logger) *Recorder {
	return &Recorder{
		newDevice: factory,
		log:       log,
	}
}

// Start acquires a fresh device and begins buffering its chunks. A failed
// acquisition leaves the recorder idle and reports ErrMicrophoneUnavailable.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return fmt.Errorf("recording already in progress")
	}

	dev := r.newDevice()
	if err := dev.Start(ctx); err != nil {
		r.log.Error("failed to acquire capture device", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", entity.ErrMicrophoneUnavailable, err)
	}

	r.device = dev
	r.chunks = nil
	r.collected = make(chan struct{})
	r.active = true

	go r.collect(dev, r.collected)

	r.log.Info("recording started")
	return nil
}

// collect appends chunks in arrival order until the device closes its
// channel.
func (r *Recorder) collect(dev Device, done chan struct{}) {
	for chunk := range dev.Chunks() {
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
	close(done)
}

// Stop finishes the active recording and returns the concatenated payload
// wrapped as a WAV file. It returns ok=false without side effects when no
// recording is active. The device is released unconditionally, whatever
// happens to the payload downstream.
func (r *Recorder) Stop() (*Recording, bool) {
	dev, done := r.finish()
	if dev == nil {
		return nil, false
	}

	if err := dev.Stop(); err != nil {
		r.log.Warn("capture device release reported error", slog.String("error", err.Error()))
	}
	<-done

	r.mu.Lock()
	var size int
	for _, c := range r.chunks {
		size += len(c)
	}
	pcm := make([]byte, 0, size)
	for _, c := range r.chunks {
		pcm = append(pcm, c...)
	}
	r.chunks = nil
	r.mu.Unlock()

	r.log.Info("recording stopped", slog.Int("pcm_bytes", len(pcm)))
	return &Recording{
		Bytes:    EncodeWAV(pcm, consts.DefaultSampleRate, consts.DefaultChannels, 16),
		FileName: "recording.wav",
	}, true
}

// Abort releases the device and discards everything buffered so far.
func (r *Recorder) Abort() {
	dev, done := r.finish()
	if dev == nil {
		return
	}

	if err := dev.Stop(); err != nil {
		r.log.Warn("capture device release reported error", slog.String("error", err.Error()))
	}
	<-done

	r.mu.Lock()
	r.chunks = nil
	r.mu.Unlock()

	r.log.Info("recording aborted")
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Recorder) finish() (Device, chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return nil, nil
	}
	r.active = false
	dev := r.device
	done := r.collected
	r.device = nil
	return dev, done
}
