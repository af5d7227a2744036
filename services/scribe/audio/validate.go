// Package audio validates candidate audio files before any network call.
package audio

import (
	"regexp"
	"strings"

	"github.com/amit15110003/asha-health-project/services/scribe/consts"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

var allowedMediaTypes = map[string]bool{
	"audio/wav":  true,
	"audio/mp3":  true,
	"audio/mpeg": true,
	"audio/mp4":  true,
	"audio/m4a":  true,
	"audio/webm": true,
	"audio/ogg":  true,
	"audio/flac": true,
	"audio/aac":  true,
}

var allowedExtensions = regexp.MustCompile(`(?i)\.(wav|mp3|mp4|m4a|webm|ogg|flac|aac)$`)

// Validate checks a candidate file's declared media type, name and size.
// The format check is an OR across media type and extension because
// browser-reported media types are unreliable. Returns nil when the file
// is acceptable.
func Validate(fileName, mediaType string, size int64) error {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	if !allowedMediaTypes[mt] && !allowedExtensions.MatchString(fileName) {
		return entity.ErrUnsupportedFormat
	}

	if size > consts.MaxAudioSize {
		return entity.ErrFileTooLarge
	}

	return nil
}
