package entity

import (
	"errors"
	"fmt"
)

// Validation and device errors. These are terminal from the service's point
// of view: the user picks another file or fixes device permissions.
var (
	ErrUnsupportedFormat     = errors.New("please upload a valid audio file (WAV, MP3, MP4, M4A, WebM, OGG, FLAC, AAC)")
	ErrFileTooLarge          = errors.New("file size must be less than 50MB")
	ErrMicrophoneUnavailable = errors.New("microphone access is required")
	ErrEmptyTranscript       = errors.New("transcript is required")
)

// TranscriptionError reports a transcription provider or network failure.
// The audio payload that triggered it stays valid, so callers may retry.
type TranscriptionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TranscriptionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transcription failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transcription failed: %s", e.Message)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// SynthesisReason classifies why a note-synthesis response was unusable.
type SynthesisReason string

const (
	SynthesisMalformed  SynthesisReason = "malformed_response"
	SynthesisIncomplete SynthesisReason = "incomplete_response"
	SynthesisProvider   SynthesisReason = "provider_error"
)

// SynthesisError reports unusable language-model output. RawContent keeps
// the provider's original text for diagnostics; a partially-parsed note is
// never surfaced as success.
type SynthesisError struct {
	Reason     SynthesisReason
	RawContent string
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("note synthesis failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("note synthesis failed (%s)", e.Reason)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
