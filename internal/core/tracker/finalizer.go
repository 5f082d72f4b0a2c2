package tracker

import (
	"context"
	"strings"

	"scholarscan/internal/core/job"
	"scholarscan/internal/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	finalizingMessage = "Finalizing analysis..."
	completedMessage  = "Analysis completed successfully"
	finalizingPercent = 85
)

// finalize runs once per tick that saw the extraction-finished marker. It
// asks the AI analyzer and plagiarism checker for their status in parallel
// and completes the job only when both report success.
func (c *Controller) finalize(ctx context.Context, t tag) (halt bool) {
	var aiStatus, plagiarismStatus string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.client.GetAIStatus(gctx, t.jobID)
		aiStatus = s
		return err
	})
	g.Go(func() error {
		s, err := c.client.GetPlagiarismStatus(gctx, t.jobID)
		plagiarismStatus = s
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.IncFinalizeCheck("failed")
		return c.fail(t, &Failure{Kind: KindAggregation, Err: err})
	}

	if !strings.Contains(aiStatus, "successfully") || !strings.Contains(plagiarismStatus, "successfully") {
		metrics.IncFinalizeCheck("pending")
		applied := c.mutate(t, func(s *job.State) {
			s.Progress = max(s.Progress, finalizingPercent)
			s.StatusMessage = finalizingMessage
		})
		return !applied
	}

	if !c.current(t) {
		metrics.IncStaleResponse()
		return true
	}
	data, err := c.client.GetJobData(ctx, t.jobID)
	if err != nil {
		metrics.IncFinalizeCheck("failed")
		return c.fail(t, &Failure{Kind: KindAggregation, Err: err})
	}

	metrics.IncFinalizeCheck("completed")
	c.mutate(t, func(s *job.State) {
		s.Stage = job.StageCompleted
		s.Progress = 100
		s.StatusMessage = completedMessage
		s.JobData = data
	})
	return true
}
