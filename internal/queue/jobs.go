package queue

import (
	"context"
	"errors"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

var (
	// ErrQueueFull is returned by Enqueue when every slot is taken.
	ErrQueueFull = errors.New("job queue is full")
	// ErrPoolStopped is returned by Enqueue after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Processor runs one job to a terminal state.
type Processor interface {
	Process(ctx context.Context, job *types.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job *types.Job) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, job *types.Job) error {
	return f(ctx, job)
}
