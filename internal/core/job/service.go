package job

import (
	"context"
	"fmt"
)

// Cache is the subset of the Redis platform service the snapshot service needs.
type Cache interface {
	CacheGet(ctx context.Context, key string, dest interface{}) error
	CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error
	Publish(ctx context.Context, channel, message string) error
}

// SnapshotService mirrors tracker state into Redis so other processes can
// read the latest snapshot of a job and get notified when it changes.
type SnapshotService struct{ cache Cache }

func NewSnapshotService(cache Cache) *SnapshotService { return &SnapshotService{cache: cache} }

// Save stores the snapshot under its job id and publishes an update event.
// Snapshots without a job id (idle, or a start that never got an id) are skipped.
func (s *SnapshotService) Save(ctx context.Context, st State) error {
	if st.JobID == "" {
		return nil
	}
	if err := s.cache.CacheSet(ctx, key(st.JobID), st, ttl(st.Stage)); err != nil {
		return fmt.Errorf("store snapshot %s: %w", st.JobID, err)
	}
	// notify pub/sub listeners
	_ = s.cache.Publish(ctx, key(st.JobID), "updated")
	return nil
}

func (s *SnapshotService) Get(ctx context.Context, jobID string) (*State, error) {
	var st State
	if err := s.cache.CacheGet(ctx, key(jobID), &st); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &st, nil
}

func key(id string) string { return "job:" + id + ":snapshot" }

func ttl(s Stage) int {
	if s.Terminal() {
		return 3600
	}
	return 600
}
