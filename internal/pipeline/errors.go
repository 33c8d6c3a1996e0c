package pipeline

import (
	"errors"
	"fmt"
)

// ErrVideoTooLarge is matched by errors.Is on a *SizeError.
var ErrVideoTooLarge = errors.New("video too large")

// SizeError rejects an inbound video over the configured ceiling.
type SizeError struct {
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("video is %s, limit is %s", FormatMiB(e.Size), FormatLimit(e.Limit))
}

func (e *SizeError) Unwrap() error {
	return ErrVideoTooLarge
}

// Stage names, also used as metric labels.
const (
	StageDownload     = "download"
	StageExtractAudio = "extract_audio"
	StageTranscribe   = "transcribe"
	StageSubtitles    = "subtitles"
	StageMux          = "mux"
	StageDeliver      = "deliver"
)

// StageError records the pipeline stage a job failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
