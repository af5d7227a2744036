package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// TempFilePlayback implements Playback by writing audio payloads to files
// under a private temp directory. Release removes the backing file so
// repeated record/upload cycles never accumulate data on disk.
type TempFilePlayback struct {
	dir     string
	log     *slog.Logger
	counter uint64
}

func NewTempFilePlayback(log *slog.Logger) (*TempFilePlayback, error) {
	dir, err := os.MkdirTemp("", "asha-scribe-")
	if err != nil {
		return nil, fmt.Errorf("failed to create playback dir: %w", err)
	}
	return &TempFilePlayback{dir: dir, log: log}, nil
}

func (p *TempFilePlayback) Create(fileName string, audioBytes []byte) (string, error) {
	n := atomic.AddUint64(&p.counter, 1)
	path := filepath.Join(p.dir, fmt.Sprintf("%d-%s", n, filepath.Base(fileName)))
	if err := os.WriteFile(path, audioBytes, 0o600); err != nil {
		return "", fmt.Errorf("failed to write playback file: %w", err)
	}
	return "file://" + path, nil
}

func (p *TempFilePlayback) Release(url string) {
	path := strings.TrimPrefix(url, "file://")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Warn("failed to release playback file",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// Close removes the playback directory and anything left in it.
func (p *TempFilePlayback) Close() error {
	return os.RemoveAll(p.dir)
}
