package models

import "time"

type ScheduledPost struct {
	ID             int64     `db:"id" json:"id"`
	OwnerID        int64     `db:"owner_id" json:"owner_id"`
	ChannelID      int64     `db:"channel_id" json:"channel_id"`
	Platform       string    `db:"platform" json:"platform"`
	Caption        string    `db:"caption" json:"caption"`
	PublishAt      time.Time `db:"publish_at" json:"publish_at"`
	Status         string    `db:"status" json:"status"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id,omitempty"`
	ErrorMessage   string    `db:"error_message" json:"error_message,omitempty"`
	RetryCount     int       `db:"retry_count" json:"retry_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	URL          string    `db:"url" json:"url"`
	Kind         string    `db:"kind" json:"kind"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusQueued     = "queued"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
	PostStatusCancelled  = "cancelled"
)

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
	MediaKindAudio = "audio"
)

const (
	PlatformInstagram = "instagram"
	PlatformReddit    = "reddit"
	PlatformWhatsapp  = "whatsapp"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
)

var supportedPlatforms = map[string]struct{}{
	PlatformInstagram: {},
	PlatformReddit:    {},
	PlatformWhatsapp:  {},
	PlatformFacebook:  {},
	PlatformTwitter:   {},
}

func IsSupportedPlatform(platform string) bool {
	_, ok := supportedPlatforms[platform]
	return ok
}

func IsValidMediaKind(kind string) bool {
	return kind == MediaKindImage || kind == MediaKindVideo || kind == MediaKindAudio
}
