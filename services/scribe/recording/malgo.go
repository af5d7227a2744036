package recording

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/amit15110003/asha-health-project/services/scribe/consts"
)

// MicDevice captures mono 16 kHz signed 16-bit PCM from the default
// microphone via malgo. One-shot: Stop releases the device and the malgo
// context and closes the chunk channel.
type MicDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	chunks chan []byte

	mu      sync.Mutex
	running bool
}

func NewMicDevice() *MicDevice {
	return &MicDevice{
		chunks: make(chan []byte, 256),
	}
}

// NewMicDeviceFactory adapts MicDevice construction to the recorder's
// DeviceFactory contract.
func NewMicDeviceFactory() DeviceFactory {
	return func() Device { return NewMicDevice() }
}

func (d *MicDevice) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("capture device already running")
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to init audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(consts.DefaultChannels)
	cfg.SampleRate = uint32(consts.DefaultSampleRate)
	cfg.Alsa.NoMMap = 1

	onRecvFrames := func(_, pInputSamples []byte, _ uint32) {
		if len(pInputSamples) == 0 {
			return
		}
		chunk := make([]byte, len(pInputSamples))
		copy(chunk, pInputSamples)
		// block rather than drop so no audio is lost
		d.chunks <- chunk
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("failed to init capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	d.ctx = mctx
	d.device = device
	d.running = true
	return nil
}

func (d *MicDevice) Chunks() <-chan []byte {
	return d.chunks
}

func (d *MicDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	d.device.Uninit()
	err := d.ctx.Uninit()
	d.ctx.Free()
	d.device = nil
	d.ctx = nil

	close(d.chunks)
	return err
}
