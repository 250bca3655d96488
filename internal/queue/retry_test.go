package queue

import (
	"testing"
	"time"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/stretchr/testify/assert"
)

func TestBackoffDoubles(t *testing.T) {
	cfg := config.Scheduler{BackoffBase: 30 * time.Second, BackoffCap: time.Hour}

	assert.Equal(t, 30*time.Second, Backoff(cfg, 0))
	assert.Equal(t, 60*time.Second, Backoff(cfg, 1))
	assert.Equal(t, 120*time.Second, Backoff(cfg, 2))
	assert.Equal(t, 240*time.Second, Backoff(cfg, 3))
}

func TestBackoffCapped(t *testing.T) {
	cfg := config.Scheduler{BackoffBase: 30 * time.Second, BackoffCap: 2 * time.Minute}

	assert.Equal(t, 2*time.Minute, Backoff(cfg, 2))
	assert.Equal(t, 2*time.Minute, Backoff(cfg, 10))
	assert.Equal(t, 2*time.Minute, Backoff(cfg, 60))
}

func TestBackoffDefaults(t *testing.T) {
	cfg := config.Scheduler{}

	assert.Equal(t, 30*time.Second, Backoff(cfg, 0))
	assert.Equal(t, time.Hour, Backoff(cfg, 30))
}
