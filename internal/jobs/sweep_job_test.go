package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/platform"
	"github.com/maheshrc27/postqueue/internal/queue"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepPostStore struct {
	posts map[int64]*models.ScheduledPost
}

func newSweepPostStore(posts ...*models.ScheduledPost) *sweepPostStore {
	s := &sweepPostStore{posts: make(map[int64]*models.ScheduledPost)}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *sweepPostStore) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	return 0, nil
}

func (s *sweepPostStore) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return s.posts[id], nil
}

func (s *sweepPostStore) CheckByOwnerID(ctx context.Context, postID, ownerID int64) (bool, error) {
	return false, nil
}

func (s *sweepPostStore) List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (s *sweepPostStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range s.posts {
		if p.Status == models.PostStatusQueued && !p.PublishAt.After(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *sweepPostStore) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range s.posts {
		if p.Status == models.PostStatusPublishing && p.UpdatedAt.Before(olderThan) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *sweepPostStore) Transition(ctx context.Context, id int64, from []string, to string, fields repository.TransitionFields) (bool, error) {
	p, ok := s.posts[id]
	if !ok {
		return false, nil
	}

	matched := false
	for _, st := range from {
		if p.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	p.Status = to
	if to == models.PostStatusFailed {
		p.ErrorMessage = fields.ErrorMessage
	}
	if fields.PublishAt != nil {
		p.PublishAt = *fields.PublishAt
	}
	if fields.IncrementRetry {
		p.RetryCount++
	}
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *sweepPostStore) CountByStatus(ctx context.Context, ownerID int64) (map[string]int64, error) {
	return nil, nil
}

type captureEnqueuer struct {
	postIDs []int64
}

func (e *captureEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var payload queue.PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, err
	}
	e.postIDs = append(e.postIDs, payload.PostID)
	return &asynq.TaskInfo{}, nil
}

func sweepConfig() config.Scheduler {
	return config.Scheduler{
		MaxRetries:        5,
		BackoffBase:       30 * time.Second,
		BackoffCap:        time.Hour,
		ProcessingTimeout: 5 * time.Minute,
		SweepBatchSize:    100,
	}
}

func sweepRegistry(t *testing.T) *platform.Registry {
	t.Helper()
	r := platform.NewRegistry()
	require.NoError(t, r.Register(platform.NewTwitterPublisher()))
	require.NoError(t, r.Register(platform.NewRedditPublisher()))
	return r
}

func TestSweepEnqueuesDuePosts(t *testing.T) {
	now := time.Now().UTC()
	store := newSweepPostStore(
		&models.ScheduledPost{ID: 1, Platform: models.PlatformTwitter, Status: models.PostStatusQueued, PublishAt: now.Add(-time.Minute)},
		&models.ScheduledPost{ID: 2, Platform: models.PlatformTwitter, Status: models.PostStatusQueued, PublishAt: now.Add(time.Hour)},
		&models.ScheduledPost{ID: 3, Platform: models.PlatformTwitter, Status: models.PostStatusPublished, PublishAt: now.Add(-time.Hour)},
	)
	enq := &captureEnqueuer{}

	NewSweepJob(sweepConfig(), store, sweepRegistry(t), enq).Sweep()

	assert.Equal(t, []int64{1}, enq.postIDs)
}

func TestSweepRequeuesStuckPost(t *testing.T) {
	now := time.Now().UTC()
	store := newSweepPostStore(&models.ScheduledPost{
		ID:         7,
		Platform:   models.PlatformTwitter,
		Status:     models.PostStatusPublishing,
		RetryCount: 1,
		UpdatedAt:  now.Add(-10 * time.Minute),
	})
	enq := &captureEnqueuer{}

	NewSweepJob(sweepConfig(), store, sweepRegistry(t), enq).Sweep()

	post := store.posts[7]
	assert.Equal(t, models.PostStatusQueued, post.Status)
	assert.Equal(t, 2, post.RetryCount)
	assert.Equal(t, []int64{7}, enq.postIDs)
}

func TestSweepIgnoresRecentPublishing(t *testing.T) {
	store := newSweepPostStore(&models.ScheduledPost{
		ID:        7,
		Platform:  models.PlatformTwitter,
		Status:    models.PostStatusPublishing,
		UpdatedAt: time.Now().UTC().Add(-time.Minute),
	})
	enq := &captureEnqueuer{}

	NewSweepJob(sweepConfig(), store, sweepRegistry(t), enq).Sweep()

	assert.Equal(t, models.PostStatusPublishing, store.posts[7].Status)
	assert.Empty(t, enq.postIDs)
}

func TestSweepFailsStuckPostAtRetryLimit(t *testing.T) {
	cfg := sweepConfig()
	cfg.MaxRetries = 3

	store := newSweepPostStore(&models.ScheduledPost{
		ID:         7,
		Platform:   models.PlatformTwitter,
		Status:     models.PostStatusPublishing,
		RetryCount: 2,
		UpdatedAt:  time.Now().UTC().Add(-10 * time.Minute),
	})
	enq := &captureEnqueuer{}

	NewSweepJob(cfg, store, sweepRegistry(t), enq).Sweep()

	post := store.posts[7]
	assert.Equal(t, models.PostStatusFailed, post.Status)
	assert.Equal(t, 3, post.RetryCount)
	assert.Contains(t, post.ErrorMessage, "unconfirmed outcome")
	assert.Empty(t, enq.postIDs)
}
