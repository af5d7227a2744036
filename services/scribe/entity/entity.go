package entity

// Word is a single timestamped word from the transcription provider.
// The JSON shape mirrors the provider's word objects so the API can hand
// the word list back to the UI unchanged. Speaker is nil when diarization
// did not tag the word.
type Word struct {
	Word           string  `json:"word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
	Speaker        *int    `json:"speaker,omitempty"`
}

// SpeakerSegment is a contiguous run of words attributed to one speaker.
// Derived from the word list, never provider-supplied.
type SpeakerSegment struct {
	Speaker *int    `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Metadata carries provider-reported audio properties.
type Metadata struct {
	Duration float64 `json:"duration"`
	Channels int     `json:"channels"`
}

// TranscriptionResult is the normalized transcription of one audio payload.
// Replaced wholesale on each new transcription, never mutated in place.
type TranscriptionResult struct {
	Transcript      string           `json:"transcript"`
	Confidence      float64          `json:"confidence"`
	Words           []Word           `json:"words"`
	SpeakerCount    int              `json:"speakerCount"`
	Speakers        []int            `json:"speakers"`
	SpeakerSegments []SpeakerSegment `json:"speakerSegments"`
	Metadata        Metadata         `json:"metadata"`
}

type TranscribeAudioRequest struct {
	Audio     []byte
	FileName  string
	MediaType string
}

type GenerateNoteRequest struct {
	Transcript string `json:"transcript"`
}

type GenerateNoteResponse struct {
	Success bool      `json:"success"`
	Note    *SoapNote `json:"note"`
}
