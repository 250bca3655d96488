package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPostService struct {
	createPost *models.ScheduledPost
	createErr  error
	cancelPost *models.ScheduledPost
	cancelErr  error
	stats      *transfer.PostStatistics
	posts      []*models.ScheduledPost
}

func (s *stubPostService) Create(ctx context.Context, ownerID int64, pc *transfer.PostCreation) (*models.ScheduledPost, error) {
	return s.createPost, s.createErr
}

func (s *stubPostService) Info(ctx context.Context, ownerID, postID int64) (*transfer.PostDetail, error) {
	if s.cancelPost == nil {
		return nil, service.ErrPostNotFound
	}
	return &transfer.PostDetail{Post: s.cancelPost}, nil
}

func (s *stubPostService) List(ctx context.Context, ownerID int64, f transfer.PostFilters) ([]*models.ScheduledPost, error) {
	return s.posts, nil
}

func (s *stubPostService) Cancel(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error) {
	return s.cancelPost, s.cancelErr
}

func (s *stubPostService) Promote(ctx context.Context, ownerID, postID int64) (*models.ScheduledPost, error) {
	return s.cancelPost, s.cancelErr
}

func (s *stubPostService) Statistics(ctx context.Context, ownerID int64) (*transfer.PostStatistics, error) {
	return s.stats, nil
}

type noopEnqueuer struct {
	count int
}

func (e *noopEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.count++
	return &asynq.TaskInfo{}, nil
}

func newTestApp(svc service.PostService, enq *noopEnqueuer) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "1")
		return c.Next()
	})

	h := NewPostHandler(svc, enq)
	app.Post("/api/scheduler/posts", h.CreatePost)
	app.Get("/api/scheduler/posts", h.ListPosts)
	app.Get("/api/scheduler/posts/statistics", h.Statistics)
	app.Get("/api/scheduler/posts/:id", h.GetPost)
	app.Post("/api/scheduler/posts/:id/cancel", h.CancelPost)
	app.Post("/api/scheduler/posts/:id/promote", h.PromotePost)
	return app
}

func TestCreatePostReturnsQueuedPost(t *testing.T) {
	publishAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	svc := &stubPostService{createPost: &models.ScheduledPost{ID: 42, Status: models.PostStatusQueued, PublishAt: publishAt}}
	enq := &noopEnqueuer{}
	app := newTestApp(svc, enq)

	body := `{"platform":"twitter","social_account_id":10,"text":"hello","scheduled_at":"` + publishAt.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest("POST", "/api/scheduler/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created transfer.PostCreated
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, models.PostStatusQueued, created.Status)

	// A queued post gets its dispatch scheduled right away.
	assert.Equal(t, 1, enq.count)
}

func TestCreatePostDraftSkipsEnqueue(t *testing.T) {
	svc := &stubPostService{createPost: &models.ScheduledPost{ID: 42, Status: models.PostStatusDraft}}
	enq := &noopEnqueuer{}
	app := newTestApp(svc, enq)

	req := httptest.NewRequest("POST", "/api/scheduler/posts", strings.NewReader(`{"draft":true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, enq.count)
}

func TestCreatePostPastScheduleRejected(t *testing.T) {
	svc := &stubPostService{createErr: service.ErrPastSchedule}
	app := newTestApp(svc, &noopEnqueuer{})

	req := httptest.NewRequest("POST", "/api/scheduler/posts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostInvalidChannelRejected(t *testing.T) {
	svc := &stubPostService{createErr: service.ErrInvalidChannel}
	app := newTestApp(svc, &noopEnqueuer{})

	req := httptest.NewRequest("POST", "/api/scheduler/posts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostInvalidContentRejected(t *testing.T) {
	svc := &stubPostService{createErr: fmt.Errorf("%w: caption cannot be empty", service.ErrInvalidContent)}
	app := newTestApp(svc, &noopEnqueuer{})

	req := httptest.NewRequest("POST", "/api/scheduler/posts", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCancelPostConflict(t *testing.T) {
	svc := &stubPostService{cancelErr: service.ErrNotCancellable}
	app := newTestApp(svc, &noopEnqueuer{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/scheduler/posts/1/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCancelPostNotFound(t *testing.T) {
	svc := &stubPostService{cancelErr: service.ErrPostNotFound}
	app := newTestApp(svc, &noopEnqueuer{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/scheduler/posts/1/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPromotePostEnqueues(t *testing.T) {
	svc := &stubPostService{cancelPost: &models.ScheduledPost{ID: 9, Status: models.PostStatusQueued, PublishAt: time.Now().UTC().Add(time.Hour)}}
	enq := &noopEnqueuer{}
	app := newTestApp(svc, enq)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/scheduler/posts/9/promote", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, enq.count)
}

func TestPromotePostConflict(t *testing.T) {
	svc := &stubPostService{cancelErr: service.ErrStaleTransition}
	app := newTestApp(svc, &noopEnqueuer{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/scheduler/posts/9/promote", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestListPostsReturnsEmptyArray(t *testing.T) {
	app := newTestApp(&stubPostService{}, &noopEnqueuer{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/scheduler/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestStatistics(t *testing.T) {
	svc := &stubPostService{stats: &transfer.PostStatistics{
		Total:    3,
		ByStatus: map[string]int64{models.PostStatusQueued: 2, models.PostStatusPublished: 1},
	}}
	app := newTestApp(svc, &noopEnqueuer{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/scheduler/posts/statistics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats transfer.PostStatistics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[models.PostStatusQueued])
}
