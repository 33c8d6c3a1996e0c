package types

import "time"

// JobState is a step of the per-video pipeline.
type JobState string

// Job states, in pipeline order. NoSpeech and Failed are early exits.
const (
	StateReceived       JobState = "RECEIVED"
	StateDownloading    JobState = "DOWNLOADING"
	StateAudioExtracted JobState = "AUDIO_EXTRACTED"
	StateTranscribed    JobState = "TRANSCRIBED"
	StateSubtitlesBuilt JobState = "SUBTITLES_BUILT"
	StateMuxed          JobState = "MUXED"
	StateDelivered      JobState = "DELIVERED"
	StateNoSpeech       JobState = "NO_SPEECH"
	StateFailed         JobState = "FAILED"
)

// Terminal reports whether no further transition follows s.
func (s JobState) Terminal() bool {
	switch s {
	case StateDelivered, StateNoSpeech, StateFailed:
		return true
	default:
		return false
	}
}

// Segment represents a timestamped segment of transcription
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SubtitleEntry is one translated, numbered cue with formatted timestamps.
type SubtitleEntry struct {
	Index int
	Start string
	End   string
	Text  string
}

// StatusHandle identifies the single progress message edited in place.
type StatusHandle struct {
	ChatID    int64
	MessageID int
}

// Valid reports whether the handle points at a sent message.
func (h StatusHandle) Valid() bool {
	return h.MessageID != 0
}

// JobPaths are the four files exclusively owned by one job.
type JobPaths struct {
	Video    string
	Audio    string
	Subtitle string
	Output   string
}

// All returns the paths in pipeline order.
func (p JobPaths) All() []string {
	return []string{p.Video, p.Audio, p.Subtitle, p.Output}
}

// Job is the per-request state carried from receipt to cleanup.
type Job struct {
	ID          string
	RequesterID int64
	Requester   string
	RequestID   int
	ChatID      int64
	FileID      string
	VideoSize   int64
	Paths       JobPaths
	Status      StatusHandle
	State       JobState
	Segments    int
	Error       error
	CreatedAt   time.Time
	FinishedAt  time.Time
}
