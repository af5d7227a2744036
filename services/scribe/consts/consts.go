package consts

const (
	// Audio formats
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatMP4  = "mp4"
	FormatM4A  = "m4a"
	FormatWebM = "webm"
	FormatOGG  = "ogg"
	FormatFLAC = "flac"
	FormatAAC  = "aac"

	// Capture settings
	DefaultSampleRate = 16000
	DefaultChannels   = 1

	// Upload ceiling
	MaxAudioSize = 50 * 1024 * 1024 // 50MiB
)
