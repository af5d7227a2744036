package audio

import (
	"errors"
	"testing"

	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		mediaType string
		size      int64
		wantErr   error
	}{
		{
			name:      "wav by media type",
			fileName:  "visit",
			mediaType: "audio/wav",
			size:      1024,
		},
		{
			name:      "webm with codec parameter",
			fileName:  "recording.bin",
			mediaType: "audio/webm;codecs=opus",
			size:      2048,
		},
		{
			name:      "uppercase extension with empty media type",
			fileName:  "note.M4A",
			mediaType: "",
			size:      1024,
		},
		{
			name:      "extension wins over unrecognized media type",
			fileName:  "consult.mp3",
			mediaType: "application/octet-stream",
			size:      1024,
		},
		{
			name:      "unsupported format",
			fileName:  "notes.txt",
			mediaType: "text/plain",
			size:      10,
			wantErr:   entity.ErrUnsupportedFormat,
		},
		{
			name:      "no signals at all",
			fileName:  "mystery",
			mediaType: "",
			size:      10,
			wantErr:   entity.ErrUnsupportedFormat,
		},
		{
			name:      "too large despite valid type",
			fileName:  "long-visit.wav",
			mediaType: "audio/wav",
			size:      60 * 1024 * 1024,
			wantErr:   entity.ErrFileTooLarge,
		},
		{
			name:      "exactly at the ceiling",
			fileName:  "edge.wav",
			mediaType: "audio/wav",
			size:      50 * 1024 * 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fileName, tt.mediaType, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q, %q, %d) = %v, want %v", tt.fileName, tt.mediaType, tt.size, err, tt.wantErr)
			}
		})
	}
}
