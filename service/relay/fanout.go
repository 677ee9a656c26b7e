package relay

import (
	"sync"
)

type broadcastJob struct {
	conns   []*Client
	payload []byte
	exclude *Client
}

// Fanout delivers one serialized event to every target connection via a small
// worker pool. Delivery failure to any one connection never aborts delivery
// to the rest: a slow or closed client simply misses the frame.
type Fanout struct {
	jobs     chan broadcastJob
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 2
	}
	f := &Fanout{jobs: make(chan broadcastJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					if job.exclude != nil && c == job.exclude {
						continue
					}
					c.enqueue(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast fans payload out to conns, skipping exclude when given. After
// Close it is a no-op; connection teardown may still broadcast presence while
// the rest of the relay shuts down.
func (f *Fanout) Broadcast(conns []*Client, payload []byte, exclude *Client) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	f.jobs <- broadcastJob{conns: conns, payload: payload, exclude: exclude}
}

// Close stops the workers once queued jobs drain.
func (f *Fanout) Close() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.jobs)
	})
}
