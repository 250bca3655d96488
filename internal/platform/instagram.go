package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// InstagramPublisher posts through the Instagram content publishing API:
// one media container per item (a carousel container on top when there are
// several), then media_publish.
type InstagramPublisher struct {
	client  *http.Client
	baseURL string
}

func NewInstagramPublisher() *InstagramPublisher {
	return &InstagramPublisher{
		client:  &http.Client{},
		baseURL: graphBaseURL,
	}
}

func (ig *InstagramPublisher) Name() string { return models.PlatformInstagram }

func (ig *InstagramPublisher) SupportsDedup() bool { return false }

func (ig *InstagramPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	if len(req.Media) == 0 {
		return nil, NewPermanent(ig.Name(), "instagram requires at least one media item")
	}

	containerIDs := make([]string, 0, len(req.Media))
	for _, m := range req.Media {
		id, err := ig.createContainer(ctx, req, m, len(req.Media) > 1)
		if err != nil {
			return nil, err
		}
		containerIDs = append(containerIDs, id)
	}

	creationID := containerIDs[0]
	if len(containerIDs) > 1 {
		id, err := ig.createCarousel(ctx, req, containerIDs)
		if err != nil {
			return nil, err
		}
		creationID = id
	}

	return ig.publishContainer(ctx, req, creationID)
}

func (ig *InstagramPublisher) createContainer(ctx context.Context, req *PublishRequest, m *models.PostMedia, carouselItem bool) (string, error) {
	payload := map[string]interface{}{}
	switch m.Kind {
	case models.MediaKindImage:
		payload["image_url"] = m.URL
	case models.MediaKindVideo:
		payload["video_url"] = m.URL
		payload["media_type"] = "REELS"
	default:
		return "", NewPermanent(ig.Name(), "instagram does not accept %s media", m.Kind)
	}

	if carouselItem {
		payload["is_carousel_item"] = true
	} else {
		payload["caption"] = req.Post.Caption
	}

	endpoint := fmt.Sprintf("%s/%s/media", ig.baseURL, req.AccountID)
	return ig.createObject(ctx, req, endpoint, payload)
}

func (ig *InstagramPublisher) createCarousel(ctx context.Context, req *PublishRequest, children []string) (string, error) {
	payload := map[string]interface{}{
		"media_type": "CAROUSEL",
		"children":   children,
		"caption":    req.Post.Caption,
	}

	endpoint := fmt.Sprintf("%s/%s/media", ig.baseURL, req.AccountID)
	return ig.createObject(ctx, req, endpoint, payload)
}

func (ig *InstagramPublisher) createObject(ctx context.Context, req *PublishRequest, endpoint string, payload map[string]interface{}) (string, error) {
	status, body, err := postJSON(ctx, ig.client, endpoint, req.AccessToken, payload)
	if err != nil {
		return "", NewTransient(ig.Name(), "request failed: %v", err)
	}
	if status != http.StatusOK {
		return "", classifyGraphError(ig.Name(), status, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
		return "", NewTransient(ig.Name(), "malformed container response")
	}
	return out.ID, nil
}

func (ig *InstagramPublisher) publishContainer(ctx context.Context, req *PublishRequest, creationID string) (*PublishResult, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", ig.baseURL, req.AccountID)
	payload := map[string]interface{}{"creation_id": creationID}

	status, body, err := postJSON(ctx, ig.client, endpoint, req.AccessToken, payload)
	if err != nil {
		return nil, NewTransient(ig.Name(), "request failed: %v", err)
	}
	if status != http.StatusOK {
		return nil, classifyGraphError(ig.Name(), status, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.ID == "" {
		return nil, NewTransient(ig.Name(), "malformed publish response")
	}

	return &PublishResult{
		PlatformPostID: out.ID,
		PublishedAt:    time.Now().UTC(),
	}, nil
}
