package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

type ErrorKind string

const (
	ErrorTransient ErrorKind = "transient"
	ErrorPermanent ErrorKind = "permanent"
	// ErrorDuplicate means the platform rejected the request because the
	// same content is already live, i.e. an earlier unconfirmed attempt
	// succeeded. The post is published; the external id is unknown.
	ErrorDuplicate ErrorKind = "duplicate"
)

// Error is the classification every adapter reports failures through.
// Transient errors are retried with backoff; permanent ones fail the post
// immediately.
type Error struct {
	Platform string
	Kind     ErrorKind
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure: %s", e.Platform, e.Kind, e.Message)
}

func NewTransient(platform, format string, args ...interface{}) *Error {
	return &Error{Platform: platform, Kind: ErrorTransient, Message: fmt.Sprintf(format, args...)}
}

func NewPermanent(platform, format string, args ...interface{}) *Error {
	return &Error{Platform: platform, Kind: ErrorPermanent, Message: fmt.Sprintf(format, args...)}
}

func NewDuplicate(platform, format string, args ...interface{}) *Error {
	return &Error{Platform: platform, Kind: ErrorDuplicate, Message: fmt.Sprintf(format, args...)}
}

// IsTransient reports whether err should be retried. Unclassified errors
// are not transient.
func IsTransient(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == ErrorTransient
	}
	return false
}

// IsPermanent reports whether err will not resolve without user action.
// Only explicitly classified errors count; anything else stays retryable.
func IsPermanent(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == ErrorPermanent
	}
	return false
}

// IsDuplicate reports whether err confirms the content is already live on
// the platform.
func IsDuplicate(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == ErrorDuplicate
	}
	return false
}

type PublishRequest struct {
	Post        *models.ScheduledPost
	Media       []*models.PostMedia
	AccountID   string // platform-side account / page / phone-number id
	AccountName string // subreddit for reddit, recipient for whatsapp
	AccessToken string
	// IdempotencyKey is post-<id>-attempt-<n>. Adapters whose platform
	// supports client-side de-duplication send it with the request.
	IdempotencyKey string
}

type PublishResult struct {
	PlatformPostID string
	Permalink      string
	PublishedAt    time.Time
}

// Publisher hides one platform's auth and payload shape behind a uniform
// contract. Adding a platform means adding one implementation; nothing else
// branches on platform identity.
type Publisher interface {
	Name() string
	// SupportsDedup reports whether the platform rejects a repeated publish
	// carrying the same content, making recovery of an unconfirmed attempt
	// safe from duplicates.
	SupportsDedup() bool
	Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error)
}
