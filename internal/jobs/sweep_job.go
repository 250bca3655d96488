package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/platform"
	"github.com/maheshrc27/postqueue/internal/queue"
	"github.com/maheshrc27/postqueue/internal/repository"
)

// SweepJob is the safety net under the delayed task queue. Tasks enqueued at
// creation normally dispatch a post on time; the sweep picks up whatever
// they missed (process restarts, Redis loss) and recovers posts stuck in
// publishing past the processing timeout. Double-enqueueing a post is fine:
// the worker's status claim dedupes.
type SweepJob struct {
	cfg      config.Scheduler
	posts    repository.ScheduledPostRepository
	registry *platform.Registry
	client   queue.Enqueuer
}

func NewSweepJob(cfg config.Scheduler, posts repository.ScheduledPostRepository, registry *platform.Registry, client queue.Enqueuer) *SweepJob {
	return &SweepJob{cfg: cfg, posts: posts, registry: registry, client: client}
}

func (j *SweepJob) Sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	j.sweepDue(ctx, now)
	j.recoverStuck(ctx, now)
}

func (j *SweepJob) sweepDue(ctx context.Context, now time.Time) {
	due, err := j.posts.ListDue(ctx, now, j.cfg.SweepBatchSize)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range due {
		if err := queue.EnqueuePublish(j.client, queue.PublishPostPayload{PostID: post.ID}, 0); err != nil {
			slog.Info("failed to enqueue due post", "post_id", post.ID, "error", err.Error())
		}
	}
}

// recoverStuck handles posts whose worker crashed mid-attempt: the outcome
// is unconfirmed. They are counted as a failed attempt and requeued. On
// platforms without de-duplication this can double-post if the crashed
// attempt actually reached the platform; that risk is accepted and logged
// rather than hidden.
func (j *SweepJob) recoverStuck(ctx context.Context, now time.Time) {
	stuck, err := j.posts.ListStuck(ctx, now.Add(-j.cfg.ProcessingTimeout), j.cfg.SweepBatchSize)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range stuck {
		if post.RetryCount+1 >= j.cfg.MaxRetries {
			ok, err := j.posts.Transition(ctx, post.ID,
				[]string{models.PostStatusPublishing},
				models.PostStatusFailed,
				repository.TransitionFields{
					ErrorMessage:   "publish attempt timed out with unconfirmed outcome",
					IncrementRetry: true,
				})
			if err != nil {
				slog.Info(err.Error())
			} else if ok {
				slog.Warn("stuck post failed after exhausting retries", "post_id", post.ID)
			}
			continue
		}

		if pub, err := j.registry.Get(post.Platform); err == nil && !pub.SupportsDedup() {
			slog.Warn("recovering unconfirmed attempt on platform without dedup, duplicate post possible",
				"post_id", post.ID, "platform", post.Platform)
		}

		next := now
		ok, err := j.posts.Transition(ctx, post.ID,
			[]string{models.PostStatusPublishing},
			models.PostStatusQueued,
			repository.TransitionFields{PublishAt: &next, IncrementRetry: true})
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		if !ok {
			continue
		}

		if err := queue.EnqueuePublish(j.client, queue.PublishPostPayload{PostID: post.ID}, 0); err != nil {
			slog.Info("failed to enqueue recovered post", "post_id", post.ID, "error", err.Error())
		}
	}
}
