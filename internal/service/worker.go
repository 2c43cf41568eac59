package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/currency-converter/internal/logger"
)

// Refresher runs one blocking refresh.
type Refresher interface {
	Refresh(ctx context.Context) RefreshOutcome
}

// RefreshWorker runs refreshes on a dedicated goroutine so callers on a UI
// thread never block on the network. Submissions are processed one at a time
// in the order they were made.
type RefreshWorker struct {
	refresher Refresher
	logger    *logrus.Entry

	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []chan RefreshOutcome
	stopped bool
}

// NewRefreshWorker starts a worker goroutine. Call Stop to release it.
func NewRefreshWorker(refresher Refresher, log *logger.Logger) *RefreshWorker {
	ctx, cancel := context.WithCancel(context.Background())

	worker := &RefreshWorker{
		refresher: refresher,
		logger:    log.Component("refresh_worker"),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go worker.run(ctx)

	return worker
}

// Submit queues a refresh and returns a channel that receives exactly one
// outcome. Submit never blocks. After Stop, the outcome carries
// ErrWorkerStopped.
func (worker *RefreshWorker) Submit() <-chan RefreshOutcome {
	reply := make(chan RefreshOutcome, 1)

	worker.mu.Lock()
	defer worker.mu.Unlock()

	if worker.stopped {
		reply <- stoppedOutcome()
		return reply
	}

	worker.pending = append(worker.pending, reply)

	select {
	case worker.wake <- struct{}{}:
	default:
	}

	return reply
}

// Stop cancels any in-flight refresh, answers queued submissions and waits
// for the worker goroutine to exit. Stop is idempotent.
func (worker *RefreshWorker) Stop() {
	worker.mu.Lock()
	if worker.stopped {
		worker.mu.Unlock()
		<-worker.done
		return
	}
	worker.stopped = true
	worker.mu.Unlock()

	close(worker.stop)
	worker.cancel()
	<-worker.done
}

func (worker *RefreshWorker) run(ctx context.Context) {
	defer close(worker.done)

	for {
		// stop takes priority over queued work
		select {
		case <-worker.stop:
			worker.drain()
			return
		default:
		}

		reply, ok := worker.next()
		if !ok {
			select {
			case <-worker.wake:
				continue
			case <-worker.stop:
				worker.drain()
				return
			}
		}

		outcome := worker.refresher.Refresh(ctx)
		worker.logger.WithField("outcome", outcome.Kind.String()).Debug("Refresh task finished")
		reply <- outcome
	}
}

func (worker *RefreshWorker) next() (chan RefreshOutcome, bool) {
	worker.mu.Lock()
	defer worker.mu.Unlock()

	if len(worker.pending) == 0 {
		return nil, false
	}
	reply := worker.pending[0]
	worker.pending[0] = nil
	worker.pending = worker.pending[1:]
	return reply, true
}

func (worker *RefreshWorker) drain() {
	worker.mu.Lock()
	pending := worker.pending
	worker.pending = nil
	worker.mu.Unlock()

	for _, reply := range pending {
		reply <- stoppedOutcome()
	}
}

func stoppedOutcome() RefreshOutcome {
	return RefreshOutcome{
		Kind:        OutcomeNetworkUnreachable,
		Err:         &RefreshError{Kind: OutcomeNetworkUnreachable, Cause: ErrWorkerStopped},
		CompletedAt: time.Now(),
	}
}

var _ Refresher = (*ConverterService)(nil)
