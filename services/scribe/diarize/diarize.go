// Package diarize reconstructs per-speaker turns from a flat word stream.
package diarize

import (
	"sort"
	"strings"

	"github.com/amit15110003/asha-health-project/services/scribe/entity"
)

// Segment groups an ordered, speaker-tagged word sequence into contiguous
// same-speaker segments and returns the distinct speaker ids in ascending
// order. Words without a speaker tag form their own contiguous runs and are
// left out of the speaker set. Grouping is contiguity-based only: a time gap
// between two words of the same speaker does not split a segment.
func Segment(words []entity.Word) ([]entity.SpeakerSegment, []int) {
	if len(words) == 0 {
		return nil, nil
	}

	seen := make(map[int]bool)
	for _, w := range words {
		if w.Speaker != nil {
			seen[*w.Speaker] = true
		}
	}

	var segments []entity.SpeakerSegment
	var text strings.Builder

	current := words[0].Speaker
	text.WriteString(words[0].Word)
	start := words[0].Start
	end := words[0].End

	flush := func() {
		segments = append(segments, entity.SpeakerSegment{
			Speaker: current,
			Text:    text.String(),
			Start:   start,
			End:     end,
		})
	}

	for _, w := range words[1:] {
		if sameSpeaker(current, w.Speaker) {
			text.WriteString(" ")
			text.WriteString(w.Word)
			// running max guards against a provider emitting a
			// non-monotonic end time
			if w.End > end {
				end = w.End
			}
			continue
		}

		flush()
		current = w.Speaker
		text.Reset()
		text.WriteString(w.Word)
		start = w.Start
		end = w.End
	}
	flush()

	speakers := make([]int, 0, len(seen))
	for id := range seen {
		speakers = append(speakers, id)
	}
	sort.Ints(speakers)

	return segments, speakers
}

func sameSpeaker(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
