package events

import (
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Kind classifies a job event.
type Kind string

const (
	KindState    Kind = "state"
	KindRejected Kind = "rejected"
	KindFinished Kind = "finished"
)

// Event is one sequenced job notification for the operator feed.
type Event struct {
	Seq         int64          `json:"seq"`
	Timestamp   time.Time      `json:"timestamp"`
	Kind        Kind           `json:"kind"`
	JobID       string         `json:"job_id,omitempty"`
	RequesterID int64          `json:"requester_id,omitempty"`
	RequestID   int            `json:"request_id,omitempty"`
	State       types.JobState `json:"state,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// Bus keeps the most recent events in memory for incremental reads.
type Bus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewBus creates a bus holding at most maxEvents.
func NewBus(maxEvents int) *Bus {
	if maxEvents <= 0 {
		maxEvents = 500
	}
	return &Bus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event, assigning its sequence and timestamp.
func (b *Bus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}
	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *Bus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// JobEvent builds a state event for job.
func JobEvent(kind Kind, job *types.Job, message string) Event {
	return Event{
		Kind:        kind,
		JobID:       job.ID,
		RequesterID: job.RequesterID,
		RequestID:   job.RequestID,
		State:       job.State,
		Message:     message,
	}
}
