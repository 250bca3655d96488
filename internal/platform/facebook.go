package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// FacebookPublisher posts to a page feed; a single image goes through the
// photos edge so it renders inline.
type FacebookPublisher struct {
	client  *http.Client
	baseURL string
}

func NewFacebookPublisher() *FacebookPublisher {
	return &FacebookPublisher{
		client:  &http.Client{},
		baseURL: graphBaseURL,
	}
}

func (fb *FacebookPublisher) Name() string { return models.PlatformFacebook }

func (fb *FacebookPublisher) SupportsDedup() bool { return false }

func (fb *FacebookPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	form := url.Values{}

	endpoint := fmt.Sprintf("%s/%s/feed", fb.baseURL, req.AccountID)
	form.Set("message", req.Post.Caption)

	if img := firstMediaOfKind(req.Media, models.MediaKindImage); img != nil {
		endpoint = fmt.Sprintf("%s/%s/photos", fb.baseURL, req.AccountID)
		form.Set("url", img.URL)
		form.Set("caption", req.Post.Caption)
		form.Del("message")
	} else if vid := firstMediaOfKind(req.Media, models.MediaKindVideo); vid != nil {
		form.Set("link", vid.URL)
	}

	status, body, err := postForm(ctx, fb.client, endpoint, req.AccessToken, form)
	if err != nil {
		return nil, NewTransient(fb.Name(), "request failed: %v", err)
	}
	if status != http.StatusOK {
		return nil, classifyGraphError(fb.Name(), status, body)
	}

	var out struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewTransient(fb.Name(), "malformed response")
	}

	postID := out.PostID
	if postID == "" {
		postID = out.ID
	}
	if postID == "" {
		return nil, NewTransient(fb.Name(), "response missing post id")
	}

	return &PublishResult{
		PlatformPostID: postID,
		PublishedAt:    time.Now().UTC(),
	}, nil
}

func firstMediaOfKind(media []*models.PostMedia, kind string) *models.PostMedia {
	for _, m := range media {
		if m.Kind == kind {
			return m
		}
	}
	return nil
}
