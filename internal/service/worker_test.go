package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/currency-converter/internal/testutils"
)

type fakeRefresher struct {
	calls   atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	block   chan struct{}
}

func (f *fakeRefresher) Refresh(ctx context.Context) RefreshOutcome {
	f.calls.Add(1)
	if f.running.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.running.Add(-1)

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return RefreshOutcome{Kind: OutcomeNetworkUnreachable, Err: ctx.Err()}
		}
	}
	return RefreshOutcome{Kind: OutcomeSuccess, InternetAccessible: true}
}

func receive(t *testing.T, outcomes <-chan RefreshOutcome) RefreshOutcome {
	t.Helper()
	select {
	case outcome := <-outcomes:
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh outcome")
		return RefreshOutcome{}
	}
}

func TestRefreshWorker_SubmitDeliversOutcome(t *testing.T) {
	refresher := &fakeRefresher{}
	worker := NewRefreshWorker(refresher, testutils.MockLogger())
	defer worker.Stop()

	outcome := receive(t, worker.Submit())

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRefreshWorker_RunsOneAtATime(t *testing.T) {
	refresher := &fakeRefresher{}
	worker := NewRefreshWorker(refresher, testutils.MockLogger())
	defer worker.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receive(t, worker.Submit())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), refresher.calls.Load())
	assert.False(t, refresher.overlap.Load())
}

func TestRefreshWorker_StopCancelsInFlightAndAnswersQueued(t *testing.T) {
	refresher := &fakeRefresher{block: make(chan struct{})}
	worker := NewRefreshWorker(refresher, testutils.MockLogger())

	first := worker.Submit()
	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, time.Millisecond)
	queued := worker.Submit()

	worker.Stop()

	assert.Equal(t, OutcomeNetworkUnreachable, receive(t, first).Kind)
	queuedOutcome := receive(t, queued)
	assert.Equal(t, OutcomeNetworkUnreachable, queuedOutcome.Kind)
	assert.ErrorIs(t, queuedOutcome.Err, ErrWorkerStopped)
}

func TestRefreshWorker_SubmitNeverBlocksAndStopReturns(t *testing.T) {
	refresher := &fakeRefresher{block: make(chan struct{})}
	worker := NewRefreshWorker(refresher, testutils.MockLogger())

	first := worker.Submit()
	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, time.Millisecond)

	submitted := make(chan []<-chan RefreshOutcome, 1)
	go func() {
		var replies []<-chan RefreshOutcome
		for i := 0; i < 20; i++ {
			replies = append(replies, worker.Submit())
		}
		submitted <- replies
	}()

	var queued []<-chan RefreshOutcome
	select {
	case queued = <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked behind a running refresh")
	}

	stopped := make(chan struct{})
	go func() {
		worker.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a refresh was blocked")
	}

	assert.ErrorIs(t, receive(t, first).Err, context.Canceled)
	for _, reply := range queued {
		assert.ErrorIs(t, receive(t, reply).Err, ErrWorkerStopped)
	}
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRefreshWorker_SubmitAfterStop(t *testing.T) {
	worker := NewRefreshWorker(&fakeRefresher{}, testutils.MockLogger())
	worker.Stop()
	worker.Stop()

	outcome := receive(t, worker.Submit())

	assert.ErrorIs(t, outcome.Err, ErrWorkerStopped)
}

func TestRefreshWorker_WithConverterService(t *testing.T) {
	server := testutils.NewMockRatesServer(testutils.MockRates())
	defer server.Close()

	converterService := newTestService(t, server.URL(), nil)
	worker := NewRefreshWorker(converterService, testutils.MockLogger())
	defer worker.Stop()

	outcome := receive(t, worker.Submit())

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, ConnectivityAccessible, converterService.Status().Connectivity)
}
