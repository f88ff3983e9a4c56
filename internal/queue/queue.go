package queue

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one HTTP handler invocation. Errc receives the handler's result.
type Job struct {
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs handlers on a fixed set of workers, bounding how
// many requests touch the database and the automation service at once.
type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger

	// senders guards JobQueue against being closed while EnqueueJob is
	// blocked on it; quit releases those blocked senders first.
	senders  sync.RWMutex
	quit     chan struct{}
	quitOnce sync.Once
}

func NewRequestQueueManager(queueSize int, maxWorkers int) *RequestQueueManager {
	if queueSize < 0 {
		queueSize = 0
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		logger:     slog.Default().With("component", "queue"),
		quit:       make(chan struct{}),
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			rqm.logger.Debug("worker started", "worker", workerID)
			for job := range rqm.JobQueue {
				err := rqm.run(job)
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			rqm.logger.Debug("worker stopped", "worker", workerID)
		}(i)
	}
}

// run keeps a panicking handler from taking its worker down with it.
func (rqm *RequestQueueManager) run(job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			rqm.logger.Error("handler panicked", "panic", p)
			err = errPanic
		}
	}()
	return job.Fn()
}

// EnqueueJob waits for room in the queue. It gives up with ctx's error when
// the caller goes away and with ErrClosed once Shutdown has started; in both
// cases the job never runs.
func (rqm *RequestQueueManager) EnqueueJob(ctx context.Context, job Job) error {
	rqm.senders.RLock()
	defer rqm.senders.RUnlock()

	select {
	case <-rqm.quit:
		return ErrClosed
	default:
	}

	select {
	case rqm.JobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-rqm.quit:
		return ErrClosed
	}
}

// Shutdown rejects new jobs, lets the workers finish everything already
// queued and returns once they have exited. It is safe to call twice.
func (rqm *RequestQueueManager) Shutdown() {
	rqm.quitOnce.Do(func() {
		close(rqm.quit)
		rqm.senders.Lock()
		close(rqm.JobQueue)
		rqm.senders.Unlock()
	})
	rqm.wg.Wait()
}
