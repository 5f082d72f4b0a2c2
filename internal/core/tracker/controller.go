package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"scholarscan/internal/core/job"
	"scholarscan/internal/logger"
	"scholarscan/internal/platform/metrics"
)

const (
	DefaultInterval = 2500 * time.Millisecond
	startedMessage  = "Analysis started..."
	subscriberBuf   = 16
)

// Sink receives every snapshot the controller publishes, in order.
type Sink interface {
	Save(ctx context.Context, st job.State) error
}

type Options struct {
	Interval time.Duration
	Clock    Clock
	// Sink is optional. Snapshots are handed over on a buffered channel and
	// dropped when the sink falls behind.
	Sink     Sink
	Logger   *logger.Logger
}

// tag identifies the job generation and tick a request was issued for.
type tag struct {
	jobID string
	gen   uint64
	seq   uint64
}

// Controller owns one tracked job at a time. It is the only thing that
// mutates job state; presentation code reads snapshots and calls Start/Reset.
type Controller struct {
	client   job.RemoteClient
	clock    Clock
	interval time.Duration
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   job.State
	failure *Failure
	gen     uint64
	nextSeq uint64
	lastSeq uint64
	poller  *Poller
	subs    map[int]chan job.State
	nextSub int
	closed  bool
}

func New(client job.RemoteClient, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("Tracker")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		client:   client,
		clock:    opts.Clock,
		interval: opts.Interval,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    job.Idle(),
		subs:     make(map[int]chan job.State),
	}
	if opts.Sink != nil {
		c.runSink(opts.Sink)
	}
	return c
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() job.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that moved the current job to the error stage.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure == nil {
		return nil
	}
	return c.failure
}

// Start submits a scan for author and begins polling once the gateway hands
// back a job id. Any job being tracked is abandoned first.
func (c *Controller) Start(ctx context.Context, author string) error {
	if strings.TrimSpace(author) == "" {
		return ErrEmptyAuthor
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.stopPollerLocked()
	c.gen++
	gen := c.gen
	c.nextSeq, c.lastSeq = 0, 0
	c.failure = nil
	c.state = job.State{Stage: job.StageScraping, Progress: 0, IsLoading: true}
	c.publishLocked()
	c.mu.Unlock()

	c.log.LogInfof("starting analysis for author %q", author)
	id, err := c.client.StartScan(ctx, author)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.closed {
		metrics.IncStaleResponse()
		return ErrSuperseded
	}
	c.state.IsLoading = false
	if err != nil {
		f := &Failure{Kind: KindStart, Err: err}
		c.enterErrorLocked(f, c.state.Progress)
		return f
	}

	c.state.JobID = id
	c.state.StatusMessage = startedMessage
	metrics.IncStageTransition(string(job.StageScraping))
	c.log.WithJob(id).Info().Msg("scan accepted, polling")
	c.poller = startPoller(c.ctx, c.clock, c.interval, func(pctx context.Context) bool {
		return c.tick(pctx, id, gen)
	})
	c.publishLocked()
	return nil
}

// Reset abandons the current job and returns to idle. Ticks that have not
// started yet never run; responses still in flight are discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPollerLocked()
	c.gen++
	c.nextSeq, c.lastSeq = 0, 0
	c.failure = nil
	c.state = job.Idle()
	c.publishLocked()
}

// Close stops polling for good and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopPollerLocked()
	c.gen++
	c.cancel()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// Subscribe returns a channel receiving every published snapshot. Slow
// subscribers miss snapshots rather than block the controller.
func (c *Controller) Subscribe() (<-chan job.State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan job.State, subscriberBuf)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				close(sub)
				delete(c.subs, id)
			}
		})
	}
}

// tick is one poll of the status endpoint for the given job generation.
func (c *Controller) tick(ctx context.Context, jobID string, gen uint64) bool {
	t, ok := c.issue(jobID, gen)
	if !ok {
		return true
	}

	status, err := c.client.GetStatus(ctx, jobID)
	if err != nil {
		metrics.IncPoll("failed")
		return c.fail(t, &Failure{Kind: KindStatus, Err: err})
	}

	stage, progress := job.Classify(status)
	if stage == job.StageError {
		metrics.IncPoll("applied")
		return c.fail(t, &Failure{Kind: KindRemote, Status: status, Err: fmt.Errorf("analysis failed: %s", status)})
	}

	applied := c.mutate(t, func(s *job.State) {
		if s.Stage.Before(stage) {
			s.Stage = stage
			metrics.IncStageTransition(string(stage))
		}
		s.Progress = max(s.Progress, progress)
		s.StatusMessage = status
	})
	if !applied {
		metrics.IncPoll("stale")
		return true
	}
	metrics.IncPoll("applied")

	if !job.ExtractionFinished(status) {
		return false
	}
	return c.finalize(ctx, t)
}

// issue tags a new request, or reports false if the generation is gone.
func (c *Controller) issue(jobID string, gen uint64) (tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state.JobID != jobID || c.state.Stage.Terminal() {
		return tag{}, false
	}
	c.nextSeq++
	return tag{jobID: jobID, gen: gen, seq: c.nextSeq}, true
}

func (c *Controller) current(t tag) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked(t)
}

func (c *Controller) currentLocked(t tag) bool {
	return c.gen == t.gen &&
		c.state.JobID == t.jobID &&
		!c.state.Stage.Terminal() &&
		t.seq >= c.lastSeq
}

// mutate applies fn if t still belongs to the live job and reports whether
// it did.
func (c *Controller) mutate(t tag, fn func(s *job.State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(t) {
		return false
	}
	c.lastSeq = t.seq
	fn(&c.state)
	if c.state.Stage.Terminal() {
		c.stopPollerLocked()
		c.log.WithJob(t.jobID).Info().Str("stage", string(c.state.Stage)).Msg("job finished")
		if c.state.Stage == job.StageCompleted {
			metrics.IncStageTransition(string(job.StageCompleted))
		}
	}
	c.publishLocked()
	return true
}

// fail moves the job to the error stage. It always reports halt: either the
// job is now terminal or the response was stale.
func (c *Controller) fail(t tag, f *Failure) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(t) {
		metrics.IncStaleResponse()
		return true
	}
	c.lastSeq = t.seq
	f.JobID = t.jobID
	progress := c.state.Progress
	if f.Kind == KindRemote {
		// backend-reported errors reset progress, transport errors keep it
		progress = 0
	}
	c.enterErrorLocked(f, progress)
	return true
}

func (c *Controller) enterErrorLocked(f *Failure, progress int) {
	c.stopPollerLocked()
	c.failure = f
	c.state.Stage = job.StageError
	c.state.Progress = progress
	c.state.Error = f.Error()
	if f.Status != "" {
		c.state.StatusMessage = f.Status
	}
	metrics.IncStageTransition(string(job.StageError))
	c.log.WithJob(f.JobID).Error().Err(f.Err).Str("kind", string(f.Kind)).Msg("job failed")
	c.publishLocked()
}

func (c *Controller) stopPollerLocked() {
	if c.poller != nil {
		c.poller.Stop()
		c.poller = nil
	}
}

func (c *Controller) publishLocked() {
	snap := c.state
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			c.log.LogWarnf("subscriber channel full, dropping snapshot for job %q", snap.JobID)
		}
	}
}

func (c *Controller) runSink(sink Sink) {
	ch, _ := c.Subscribe()
	go func() {
		for st := range ch {
			if err := sink.Save(c.ctx, st); err != nil && !errors.Is(err, context.Canceled) {
				c.log.LogErrorf("save snapshot: %v", err)
			}
		}
	}()
}
