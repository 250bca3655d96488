package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrPastSchedule),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrInvalidContent):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrStaleTransition),
		errors.Is(err, service.ErrNotCancellable):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrPostNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
