package service

import "errors"

// User-input errors surface as 400, state-race errors as 409. Platform
// errors never reach the API synchronously; callers observe them as an
// eventual status=failed with error_message.
var (
	ErrInvalidTime     = errors.New("invalid scheduled time")
	ErrPastSchedule    = errors.New("scheduled time must be in the future")
	ErrInvalidChannel  = errors.New("social account is invalid for this post")
	ErrInvalidContent  = errors.New("invalid post content")
	ErrStaleTransition = errors.New("post status changed concurrently")
	ErrNotCancellable  = errors.New("post can no longer be cancelled")
	ErrPostNotFound    = errors.New("post not found")
)
