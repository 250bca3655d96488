package transfer

import (
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

type MediaRef struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type PostCreation struct {
	Platform        string     `json:"platform"`
	SocialAccountID int64      `json:"social_account_id"`
	Text            string     `json:"text"`
	Media           []MediaRef `json:"media,omitempty"`
	ScheduledAt     string     `json:"scheduled_at"`
	Timezone        string     `json:"timezone,omitempty"`
	Draft           bool       `json:"draft,omitempty"`
}

type PostCreated struct {
	ID          int64     `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
}

type PostFilters struct {
	Status    string
	ChannelID int64
	Platform  string
	Limit     int
	Offset    int
}

type PostDetail struct {
	Post  *models.ScheduledPost `json:"post"`
	Media []*models.PostMedia   `json:"media"`
	Runs  []*models.PostRun     `json:"runs"`
}

type PostStatistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type MediaUpload struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}
