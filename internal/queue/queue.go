package queue

import (
	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/platform"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/service"
)

// Worker owns the publishing side of a post's lifecycle: it claims due
// posts, drives attempts through the platform adapters and writes the run
// ledger.
type Worker struct {
	cfg      config.Scheduler
	posts    repository.ScheduledPostRepository
	media    repository.PostMediaRepository
	runs     repository.PostRunRepository
	accounts repository.SocialAccountRepository
	registry *platform.Registry
	tokens   service.AccountService
	client   Enqueuer
}

func NewWorker(
	cfg config.Scheduler,
	posts repository.ScheduledPostRepository,
	media repository.PostMediaRepository,
	runs repository.PostRunRepository,
	accounts repository.SocialAccountRepository,
	registry *platform.Registry,
	tokens service.AccountService,
	client Enqueuer) *Worker {
	return &Worker{
		cfg:      cfg,
		posts:    posts,
		media:    media,
		runs:     runs,
		accounts: accounts,
		registry: registry,
		tokens:   tokens,
		client:   client,
	}
}
