package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// WhatsappPublisher sends through the WhatsApp Business Cloud API. The
// linked account's phone-number id is the sender and its configured
// broadcast recipient is the target. The idempotency key travels as
// biz_opaque_callback_data so retried sends can be correlated downstream.
type WhatsappPublisher struct {
	client  *http.Client
	baseURL string
}

func NewWhatsappPublisher() *WhatsappPublisher {
	return &WhatsappPublisher{
		client:  &http.Client{},
		baseURL: graphBaseURL,
	}
}

func (wa *WhatsappPublisher) Name() string { return models.PlatformWhatsapp }

func (wa *WhatsappPublisher) SupportsDedup() bool { return false }

func (wa *WhatsappPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	payload := map[string]interface{}{
		"messaging_product":        "whatsapp",
		"recipient_type":           "individual",
		"to":                       req.AccountName,
		"biz_opaque_callback_data": req.IdempotencyKey,
	}

	if img := firstMediaOfKind(req.Media, models.MediaKindImage); img != nil {
		payload["type"] = "image"
		payload["image"] = map[string]string{"link": img.URL, "caption": req.Post.Caption}
	} else if vid := firstMediaOfKind(req.Media, models.MediaKindVideo); vid != nil {
		payload["type"] = "video"
		payload["video"] = map[string]string{"link": vid.URL, "caption": req.Post.Caption}
	} else if aud := firstMediaOfKind(req.Media, models.MediaKindAudio); aud != nil {
		payload["type"] = "audio"
		payload["audio"] = map[string]string{"link": aud.URL}
	} else {
		payload["type"] = "text"
		payload["text"] = map[string]interface{}{"body": req.Post.Caption, "preview_url": true}
	}

	endpoint := fmt.Sprintf("%s/%s/messages", wa.baseURL, req.AccountID)

	status, body, err := postJSON(ctx, wa.client, endpoint, req.AccessToken, payload)
	if err != nil {
		return nil, NewTransient(wa.Name(), "request failed: %v", err)
	}
	if status != http.StatusOK {
		return nil, classifyGraphError(wa.Name(), status, body)
	}

	var out struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &out); err != nil || len(out.Messages) == 0 || out.Messages[0].ID == "" {
		return nil, NewTransient(wa.Name(), "malformed response")
	}

	return &PublishResult{
		PlatformPostID: out.Messages[0].ID,
		PublishedAt:    time.Now().UTC(),
	}, nil
}
