package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-translator-bot/internal/events"
	"github.com/codebuildervaibhav/video-translator-bot/internal/metrics"
	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
	"github.com/codebuildervaibhav/video-translator-bot/internal/subtitle"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Messenger delivers status and result messages to the requester.
type Messenger interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (types.StatusHandle, error)
	Edit(ctx context.Context, status types.StatusHandle, text string) error
	Delete(ctx context.Context, status types.StatusHandle) error
	SendVideo(ctx context.Context, chatID int64, replyTo int, path, caption string) error
}

// Downloader persists an inbound video to dest.
type Downloader interface {
	Download(ctx context.Context, fileID, dest string) error
}

// Media extracts audio from and burns subtitles into videos.
type Media interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string) error
}

// Transcriber produces timed source-language segments from audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]types.Segment, error)
}

// SubtitleBuilder turns segments into a translated subtitle document.
type SubtitleBuilder interface {
	Build(ctx context.Context, segments []types.Segment) *subtitle.Document
}

// JobRecorder keeps the history of finished jobs.
type JobRecorder interface {
	SaveJob(ctx context.Context, rec storage.JobRecord) error
}

// Options wires a Coordinator. Store, Events and Metrics are optional.
type Options struct {
	Workspace      *storage.Workspace
	Downloader     Downloader
	Media          Media
	Transcriber    Transcriber
	Subtitles      SubtitleBuilder
	Messenger      Messenger
	Store          JobRecorder
	Events         *events.Bus
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	SourceLanguage string
	MaxVideoBytes  int64
}

// Request describes one inbound video message.
type Request struct {
	RequesterID int64
	Requester   string
	RequestID   int
	ChatID      int64
	FileID      string
	VideoSize   int64
}

// Coordinator drives one job at a time through the pipeline stages:
// download, audio extraction, transcription, subtitles, burn-in, delivery.
// It is safe to call Process from several goroutines for different jobs.
type Coordinator struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "en"
	}
	return &Coordinator{
		opts:   opts,
		logger: opts.Logger.With("component", "pipeline"),
		now:    time.Now,
	}
}

// Receive validates an inbound video and creates its Job. An oversized video
// is answered immediately and yields a *SizeError; no files are created.
func (c *Coordinator) Receive(ctx context.Context, req Request) (*types.Job, error) {
	c.opts.Metrics.IncReceived()

	job := &types.Job{
		ID:          uuid.NewString(),
		RequesterID: req.RequesterID,
		Requester:   req.Requester,
		RequestID:   req.RequestID,
		ChatID:      req.ChatID,
		FileID:      req.FileID,
		VideoSize:   req.VideoSize,
		State:       types.StateReceived,
		CreatedAt:   c.now(),
	}
	log := c.jobLogger(job)
	log.Info("new video", "requester", req.Requester, "size", humanize.IBytes(uint64(max(req.VideoSize, 0))))

	if c.opts.MaxVideoBytes > 0 && req.VideoSize > c.opts.MaxVideoBytes {
		sizeErr := &SizeError{Size: req.VideoSize, Limit: c.opts.MaxVideoBytes}
		log.Warn("video rejected", "error", sizeErr)
		c.opts.Metrics.IncRejected("too_large")
		c.publish(events.JobEvent(events.KindRejected, job, sizeErr.Error()))
		if _, err := c.opts.Messenger.Reply(ctx, req.ChatID, req.RequestID, TooLargeText(req.VideoSize, c.opts.MaxVideoBytes)); err != nil {
			log.Warn("failed to send size rejection", "error", err)
		}
		return nil, sizeErr
	}

	job.Paths = c.opts.Workspace.Paths(req.RequesterID, req.ChatID, req.RequestID)
	c.publish(events.JobEvent(events.KindState, job, ""))
	return job, nil
}

// Reject answers a received job that could not be scheduled.
func (c *Coordinator) Reject(ctx context.Context, job *types.Job, reason error) {
	log := c.jobLogger(job)
	log.Warn("job not scheduled", "error", reason)
	c.opts.Metrics.IncRejected("busy")
	c.publish(events.JobEvent(events.KindRejected, job, reason.Error()))
	if _, err := c.opts.Messenger.Reply(ctx, job.ChatID, job.RequestID, BusyText); err != nil {
		log.Warn("failed to send busy reply", "error", err)
	}
}

// Process runs job to a terminal state. Every exit path removes the job's
// files. The returned error is job.Error; a no-speech result is not an error.
func (c *Coordinator) Process(ctx context.Context, job *types.Job) (err error) {
	log := c.jobLogger(job)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			log.Error("panic while processing video", "panic", r)
			c.fail(ctx, job, err)
		}
		c.finish(ctx, job)
	}()

	status, replyErr := c.opts.Messenger.Reply(ctx, job.ChatID, job.RequestID, progressDownloading)
	if replyErr != nil {
		log.Warn("failed to send status message", "error", replyErr)
	}
	job.Status = status

	if err := c.run(ctx, job); err != nil {
		c.fail(ctx, job, err)
		return err
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, job *types.Job) error {
	p := job.Paths

	c.transition(job, types.StateDownloading)
	if err := c.stage(job, StageDownload, func() error {
		return c.opts.Downloader.Download(ctx, job.FileID, p.Video)
	}); err != nil {
		return err
	}
	c.progress(ctx, job, progressExtracting)

	if err := c.stage(job, StageExtractAudio, func() error {
		return c.opts.Media.ExtractAudio(ctx, p.Video, p.Audio)
	}); err != nil {
		return err
	}
	c.transition(job, types.StateAudioExtracted)
	c.progress(ctx, job, progressTranscribing)

	var segments []types.Segment
	if err := c.stage(job, StageTranscribe, func() error {
		var err error
		segments, err = c.opts.Transcriber.Transcribe(ctx, p.Audio, c.opts.SourceLanguage)
		return err
	}); err != nil {
		return err
	}
	job.Segments = len(segments)
	if len(segments) == 0 {
		c.transition(job, types.StateNoSpeech)
		c.jobLogger(job).Info("no speech detected in video")
		c.notify(ctx, job, NoSpeechText)
		return nil
	}
	c.transition(job, types.StateTranscribed)
	c.progress(ctx, job, progressTranslating(len(segments)))

	if err := c.stage(job, StageSubtitles, func() error {
		doc := c.opts.Subtitles.Build(ctx, segments)
		return doc.Save(p.Subtitle)
	}); err != nil {
		return err
	}
	c.transition(job, types.StateSubtitlesBuilt)
	c.progress(ctx, job, progressMuxing)

	if err := c.stage(job, StageMux, func() error {
		return c.opts.Media.BurnSubtitles(ctx, p.Video, p.Subtitle, p.Output)
	}); err != nil {
		return err
	}
	c.transition(job, types.StateMuxed)
	c.progress(ctx, job, progressSending)

	if err := c.stage(job, StageDeliver, func() error {
		return c.opts.Messenger.SendVideo(ctx, job.ChatID, job.RequestID, p.Output, ResultCaption)
	}); err != nil {
		return err
	}
	if job.Status.Valid() {
		if err := c.opts.Messenger.Delete(ctx, job.Status); err != nil {
			c.jobLogger(job).Warn("failed to delete status message", "error", err)
		}
	}
	c.transition(job, types.StateDelivered)
	c.jobLogger(job).Info("video processed successfully")
	return nil
}

// stage runs fn, timing it and tagging any error with the stage name.
func (c *Coordinator) stage(job *types.Job, name string, fn func() error) error {
	start := c.now()
	err := fn()
	c.opts.Metrics.ObserveStage(name, c.now().Sub(start))
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	c.jobLogger(job).Debug("stage complete", "stage", name, "elapsed", c.now().Sub(start).Round(time.Millisecond))
	return nil
}

func (c *Coordinator) transition(job *types.Job, state types.JobState) {
	job.State = state
	c.publish(events.JobEvent(events.KindState, job, ""))
}

// fail marks job Failed and shows the generic failure text. The diagnostic
// is logged only.
func (c *Coordinator) fail(ctx context.Context, job *types.Job, err error) {
	job.State = types.StateFailed
	job.Error = err
	c.jobLogger(job).Error("error processing video", "error", err)
	c.notify(ctx, job, FailureText)
}

// notify replaces the status message with text, or replies when there is no
// status message to edit.
func (c *Coordinator) notify(ctx context.Context, job *types.Job, text string) {
	if job.Status.Valid() {
		err := c.opts.Messenger.Edit(ctx, job.Status, text)
		if err == nil {
			return
		}
		c.jobLogger(job).Warn("failed to edit status message", "error", err)
	}
	if _, err := c.opts.Messenger.Reply(ctx, job.ChatID, job.RequestID, text); err != nil {
		c.jobLogger(job).Warn("failed to send message", "error", err)
	}
}

// progress edits the status message. Failures are cosmetic and only logged.
func (c *Coordinator) progress(ctx context.Context, job *types.Job, text string) {
	if !job.Status.Valid() {
		return
	}
	if err := c.opts.Messenger.Edit(ctx, job.Status, text); err != nil {
		c.jobLogger(job).Warn("failed to update status message", "error", err)
	}
}

// finish runs on every terminal state: delete files, record, count.
func (c *Coordinator) finish(ctx context.Context, job *types.Job) {
	log := c.jobLogger(job)
	log.Debug("cleaning up temporary files")
	removed := c.opts.Workspace.Remove(job.Paths)
	for _, path := range job.Paths.All() {
		if _, err := os.Stat(path); err == nil {
			log.Warn("temp file survived cleanup", "path", path)
		}
	}

	job.FinishedAt = c.now()
	c.opts.Metrics.IncFinished(string(job.State))
	msg := ""
	if job.Error != nil {
		msg = job.Error.Error()
	}
	c.publish(events.JobEvent(events.KindFinished, job, msg))

	if c.opts.Store != nil {
		// the request context may already be done; history is still wanted
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.opts.Store.SaveJob(saveCtx, storage.RecordFromJob(job)); err != nil {
			log.Warn("failed to record job", "error", err)
		}
	}
	log.Info("job finished",
		"state", job.State,
		"segments", job.Segments,
		"files_removed", removed,
		"elapsed", job.FinishedAt.Sub(job.CreatedAt).Round(time.Millisecond))
}

func (c *Coordinator) publish(ev events.Event) {
	if c.opts.Events != nil {
		c.opts.Events.Publish(ev)
	}
}

func (c *Coordinator) jobLogger(job *types.Job) *slog.Logger {
	return c.logger.With("job_id", job.ID, "requester_id", job.RequesterID, "request_id", job.RequestID)
}
