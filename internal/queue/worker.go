package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/platform"
	"github.com/maheshrc27/postqueue/internal/repository"
)

func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return w.Dispatch(ctx, payload.PostID)
}

// Dispatch claims one due post and runs a single publish attempt. The
// queued->publishing compare-and-set is what makes dispatch exactly-once:
// however many workers or duplicate tasks race here, one claim wins and the
// rest observe a stale status and walk away.
func (w *Worker) Dispatch(ctx context.Context, postID int64) error {
	post, err := w.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info("publish task for missing post", "post_id", postID)
		return nil
	}

	// A task can arrive before publish_at: a backoff requeue moves the due
	// time forward while an earlier task (the sweep's, or a duplicate
	// delivery) is already in flight. The row's publish_at is authoritative,
	// so hand the stale task back to the queue instead of claiming early.
	if delay := time.Until(post.PublishAt); post.Status == models.PostStatusQueued && delay > 0 {
		slog.Info("publish task arrived before due time, rescheduling", "post_id", postID, "delay", delay.String())
		return EnqueuePublish(w.client, PublishPostPayload{PostID: postID}, delay)
	}

	claimed, err := w.posts.Transition(ctx, postID,
		[]string{models.PostStatusQueued},
		models.PostStatusPublishing,
		repository.TransitionFields{})
	if err != nil {
		return err
	}
	if !claimed {
		slog.Info("post not claimable, skipping", "post_id", postID, "status", post.Status)
		return nil
	}

	post.Status = models.PostStatusPublishing
	return w.attempt(ctx, post)
}

func (w *Worker) attempt(ctx context.Context, post *models.ScheduledPost) error {
	attemptNo := post.RetryCount + 1

	runID, err := w.runs.Begin(ctx, &models.PostRun{
		ScheduledPostID: post.ID,
		Attempt:         attemptNo,
		StartedAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	result, err := w.publish(ctx, post, attemptNo)
	if err == nil {
		if ferr := w.runs.Finish(ctx, runID, models.RunStatusSuccess, ""); ferr != nil {
			slog.Error("failed to close post run", "run_id", runID, "error", ferr.Error())
		}

		ok, terr := w.posts.Transition(ctx, post.ID,
			[]string{models.PostStatusPublishing},
			models.PostStatusPublished,
			repository.TransitionFields{PlatformPostID: result.PlatformPostID})
		if terr != nil {
			return terr
		}
		if !ok {
			slog.Warn("published post left publishing state concurrently", "post_id", post.ID)
		}

		slog.Info("post published", "post_id", post.ID, "platform", post.Platform, "platform_post_id", result.PlatformPostID, "attempt", attemptNo)
		return nil
	}

	// A duplicate rejection means an earlier unconfirmed attempt went
	// through: the content is live, only the external id is lost.
	if platform.IsDuplicate(err) {
		if ferr := w.runs.Finish(ctx, runID, models.RunStatusSuccess, ""); ferr != nil {
			slog.Error("failed to close post run", "run_id", runID, "error", ferr.Error())
		}

		ok, terr := w.posts.Transition(ctx, post.ID,
			[]string{models.PostStatusPublishing},
			models.PostStatusPublished,
			repository.TransitionFields{})
		if terr != nil {
			return terr
		}
		if !ok {
			slog.Warn("published post left publishing state concurrently", "post_id", post.ID)
		}

		slog.Info("duplicate rejection confirmed an earlier publish", "post_id", post.ID, "platform", post.Platform, "attempt", attemptNo)
		return nil
	}

	if ferr := w.runs.Finish(ctx, runID, models.RunStatusFailed, err.Error()); ferr != nil {
		slog.Error("failed to close post run", "run_id", runID, "error", ferr.Error())
	}

	if platform.IsPermanent(err) {
		return w.fail(ctx, post, err.Error(), false)
	}

	// Transient failure. Anything unclassified (store hiccups, timeouts that
	// escaped the adapter) lands here too: retrying is the safe default.
	if attemptNo >= w.cfg.MaxRetries {
		return w.fail(ctx, post, fmt.Sprintf("retries exhausted: %s", err.Error()), true)
	}

	delay := Backoff(w.cfg, attemptNo)
	next := time.Now().UTC().Add(delay)

	ok, terr := w.posts.Transition(ctx, post.ID,
		[]string{models.PostStatusPublishing},
		models.PostStatusQueued,
		repository.TransitionFields{PublishAt: &next, IncrementRetry: true})
	if terr != nil {
		return terr
	}
	if !ok {
		slog.Warn("retrying post left publishing state concurrently", "post_id", post.ID)
		return nil
	}

	slog.Info("post requeued after transient failure", "post_id", post.ID, "attempt", attemptNo, "next_attempt_in", delay.String(), "error", err.Error())
	return EnqueuePublish(w.client, PublishPostPayload{PostID: post.ID}, delay)
}

func (w *Worker) fail(ctx context.Context, post *models.ScheduledPost, message string, countAttempt bool) error {
	ok, err := w.posts.Transition(ctx, post.ID,
		[]string{models.PostStatusPublishing},
		models.PostStatusFailed,
		repository.TransitionFields{ErrorMessage: message, IncrementRetry: countAttempt})
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("failing post left publishing state concurrently", "post_id", post.ID)
		return nil
	}

	slog.Info("post failed", "post_id", post.ID, "platform", post.Platform, "error", message)
	return nil
}

func (w *Worker) publish(ctx context.Context, post *models.ScheduledPost, attemptNo int) (*platform.PublishResult, error) {
	publisher, err := w.registry.Get(post.Platform)
	if err != nil {
		return nil, platform.NewPermanent(post.Platform, "%s", err.Error())
	}

	account, err := w.accounts.GetByID(ctx, post.ChannelID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, platform.NewPermanent(post.Platform, "social account %d is unlinked", post.ChannelID)
	}

	token, err := w.tokens.Token(ctx, account)
	if err != nil {
		return nil, platform.NewPermanent(post.Platform, "%s", err.Error())
	}

	media, err := w.media.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, w.cfg.AttemptTimeout)
	defer cancel()

	return publisher.Publish(attemptCtx, &platform.PublishRequest{
		Post:           post,
		Media:          media,
		AccountID:      account.AccountID,
		AccountName:    account.AccountName,
		AccessToken:    token,
		IdempotencyKey: fmt.Sprintf("post-%d-attempt-%d", post.ID, attemptNo),
	})
}
