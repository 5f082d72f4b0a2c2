package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"scholarscan/internal/core/job"
)

// manualClock hands out tickers that only fire when the test calls Advance.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (m *manualClock) NewTicker(time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time, 1)}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance fires every live ticker once. Like time.Ticker, a tick is
// dropped when the previous one has not been consumed yet.
func (m *manualClock) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickers {
		if t.stopped.Load() {
			continue
		}
		select {
		case t.ch <- time.Now():
		default:
		}
	}
}

func (m *manualClock) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

// MockClient is a func-field RemoteClient that counts calls.
type MockClient struct {
	StartScanFunc           func(ctx context.Context, author string) (string, error)
	GetStatusFunc           func(ctx context.Context, jobID string) (string, error)
	GetAIStatusFunc         func(ctx context.Context, jobID string) (string, error)
	GetPlagiarismStatusFunc func(ctx context.Context, jobID string) (string, error)
	GetJobDataFunc          func(ctx context.Context, jobID string) (*job.JobResult, error)

	startCalls, statusCalls, aiCalls, plagiarismCalls, dataCalls atomic.Int32
}

var errNotStubbed = errors.New("not stubbed")

func (m *MockClient) StartScan(ctx context.Context, author string) (string, error) {
	m.startCalls.Add(1)
	if m.StartScanFunc == nil {
		return "", errNotStubbed
	}
	return m.StartScanFunc(ctx, author)
}

func (m *MockClient) GetStatus(ctx context.Context, jobID string) (string, error) {
	m.statusCalls.Add(1)
	if m.GetStatusFunc == nil {
		return "", errNotStubbed
	}
	return m.GetStatusFunc(ctx, jobID)
}

func (m *MockClient) GetAIStatus(ctx context.Context, jobID string) (string, error) {
	m.aiCalls.Add(1)
	if m.GetAIStatusFunc == nil {
		return "", errNotStubbed
	}
	return m.GetAIStatusFunc(ctx, jobID)
}

func (m *MockClient) GetPlagiarismStatus(ctx context.Context, jobID string) (string, error) {
	m.plagiarismCalls.Add(1)
	if m.GetPlagiarismStatusFunc == nil {
		return "", errNotStubbed
	}
	return m.GetPlagiarismStatusFunc(ctx, jobID)
}

func (m *MockClient) GetJobData(ctx context.Context, jobID string) (*job.JobResult, error) {
	m.dataCalls.Add(1)
	if m.GetJobDataFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetJobDataFunc(ctx, jobID)
}

// sequence returns successive values on each call and repeats the last one.
func sequence(values ...string) func(context.Context, string) (string, error) {
	var mu sync.Mutex
	i := 0
	return func(context.Context, string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}

type recordingSink struct {
	mu    sync.Mutex
	saved []job.State
}

func (r *recordingSink) Save(_ context.Context, st job.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, st)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}
