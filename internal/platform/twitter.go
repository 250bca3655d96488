package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// TwitterPublisher creates a tweet through the v2 API. Media URLs are
// appended to the text; native media upload needs the v1.1 chunked upload
// flow, which the linked app tokens here are not scoped for.
type TwitterPublisher struct {
	client  *http.Client
	baseURL string
}

func NewTwitterPublisher() *TwitterPublisher {
	return &TwitterPublisher{
		client:  &http.Client{},
		baseURL: "https://api.twitter.com/2",
	}
}

func (tw *TwitterPublisher) Name() string { return models.PlatformTwitter }

func (tw *TwitterPublisher) SupportsDedup() bool { return false }

func (tw *TwitterPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	text := req.Post.Caption
	for _, m := range req.Media {
		text = text + " " + m.URL
	}
	text = strings.TrimSpace(text)

	payload := map[string]interface{}{"text": text}

	status, body, err := postJSON(ctx, tw.client, tw.baseURL+"/tweets", req.AccessToken, payload)
	if err != nil {
		return nil, NewTransient(tw.Name(), "request failed: %v", err)
	}

	switch {
	case status == http.StatusCreated || status == http.StatusOK:
	case status == http.StatusTooManyRequests || status >= 500:
		return nil, NewTransient(tw.Name(), "http status %d: %s", status, truncateBody(body))
	default:
		return nil, NewPermanent(tw.Name(), "http status %d: %s", status, truncateBody(body))
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Data.ID == "" {
		return nil, NewTransient(tw.Name(), "malformed response")
	}

	return &PublishResult{
		PlatformPostID: out.Data.ID,
		PublishedAt:    time.Now().UTC(),
	}, nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
