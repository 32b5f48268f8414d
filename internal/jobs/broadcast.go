package jobs

import (
	"sync"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// ProgressEvent is one progress update fanned out to subscribers of a job
// run's websocket stream.
type ProgressEvent struct {
	JobRunID int64             `json:"job_run_id"`
	Progress domain.JobProgress `json:"progress"`
}

// ProgressBroadcaster fans out JobManager.UpdateProgress calls to whatever is
// subscribed to a given job run — the optional websocket transport spec §4.F
// mentions alongside update_progress, for callers that want to watch a job
// rather than poll GetJobRun. A job run with no subscribers pays only the
// cost of a map lookup.
type ProgressBroadcaster struct {
	mu   sync.Mutex
	subs map[int64][]chan ProgressEvent
}

// NewProgressBroadcaster returns an empty broadcaster.
func NewProgressBroadcaster() *ProgressBroadcaster {
	return &ProgressBroadcaster{subs: map[int64][]chan ProgressEvent{}}
}

// Subscribe registers a channel for jobRunID's progress events. The returned
// cancel func must be called once the subscriber is done to avoid leaking the
// channel slot; it is safe to call more than once.
func (b *ProgressBroadcaster) Subscribe(jobRunID int64) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 8)

	b.mu.Lock()
	b.subs[jobRunID] = append(b.subs[jobRunID], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			chans := b.subs[jobRunID]
			for i, c := range chans {
				if c == ch {
					b.subs[jobRunID] = append(chans[:i], chans[i+1:]...)
					break
				}
			}
			if len(b.subs[jobRunID]) == 0 {
				delete(b.subs, jobRunID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans ev out to every current subscriber of its job run. A
// subscriber whose channel is full drops the event rather than blocking the
// job function that called UpdateProgress.
func (b *ProgressBroadcaster) Publish(ev ProgressEvent) {
	b.mu.Lock()
	chans := append([]chan ProgressEvent(nil), b.subs[ev.JobRunID]...)
	b.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- ev:
		default:
		}
	}
}
