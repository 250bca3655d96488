package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/service"
)

// TokenRefreshJob keeps adapter tokens fresh so a due post never publishes
// with expired credentials.
type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	as service.AccountService
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, as service.AccountService) *TokenRefreshJob {
	return &TokenRefreshJob{sr: sr, as: as}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	accounts, err := c.sr.ListExpiring(ctx, time.Now().Add(30*time.Minute))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.as.Refresh(ctx, acc); err != nil {
				slog.Info("unable to refresh token", "account_id", acc.ID, "platform", acc.Platform, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}
