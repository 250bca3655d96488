package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/queue"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

type PostHandler struct {
	s service.PostService
	q queue.Enqueuer
}

func NewPostHandler(service service.PostService, q queue.Enqueuer) *PostHandler {
	return &PostHandler{s: service, q: q}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if post.Status == models.PostStatusQueued {
		err = queue.EnqueuePublish(h.q, queue.PublishPostPayload{PostID: post.ID}, time.Until(post.PublishAt))
		if err != nil {
			// The sweep will pick the post up at publish_at regardless.
			slog.Error("failed to enqueue publish task", "post_id", post.ID, "error", err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(transfer.PostCreated{
		ID:          post.ID,
		ScheduledAt: post.PublishAt,
		Status:      post.Status,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	filters := transfer.PostFilters{
		Status:    c.Query("status"),
		ChannelID: int64(c.QueryInt("channel_id", 0)),
		Platform:  c.Query("platform"),
		Limit:     c.QueryInt("limit", 20),
		Offset:    c.QueryInt("offset", 0),
	}

	posts, err := h.s.List(c.Context(), userID, filters)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	detail, err := h.s.Info(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(detail)
}

func (h *PostHandler) CancelPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.Cancel(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PromotePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.Promote(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueuePublish(h.q, queue.PublishPostPayload{PostID: post.ID}, time.Until(post.PublishAt))
	if err != nil {
		slog.Error("failed to enqueue publish task", "post_id", post.ID, "error", err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) Statistics(c *fiber.Ctx) error {
	userID := GetUserID(c)

	stats, err := h.s.Statistics(c.Context(), userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to compute statistics",
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
