package job

import "context"

// RemoteClient is the contract with the analysis gateway.
type RemoteClient interface {
	StartScan(ctx context.Context, author string) (jobID string, err error)
	GetStatus(ctx context.Context, jobID string) (string, error)
	GetAIStatus(ctx context.Context, jobID string) (string, error)
	GetPlagiarismStatus(ctx context.Context, jobID string) (string, error)
	GetJobData(ctx context.Context, jobID string) (*JobResult, error)
}
