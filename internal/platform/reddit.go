package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// RedditPublisher submits to the subreddit named by the linked account.
// Reddit rejects a re-submitted link with ALREADY_SUB, which is what makes
// recovery of an unconfirmed attempt safe from duplicates on this platform.
type RedditPublisher struct {
	client  *http.Client
	baseURL string
}

func NewRedditPublisher() *RedditPublisher {
	return &RedditPublisher{
		client:  &http.Client{},
		baseURL: "https://oauth.reddit.com",
	}
}

func (rd *RedditPublisher) Name() string { return models.PlatformReddit }

func (rd *RedditPublisher) SupportsDedup() bool { return true }

func (rd *RedditPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("sr", req.AccountName)
	form.Set("title", redditTitle(req.Post.Caption))
	form.Set("resubmit", "false")

	if len(req.Media) > 0 {
		form.Set("kind", "link")
		form.Set("url", req.Media[0].URL)
	} else {
		form.Set("kind", "self")
		form.Set("text", req.Post.Caption)
	}

	status, body, err := postForm(ctx, rd.client, rd.baseURL+"/api/submit", req.AccessToken, form)
	if err != nil {
		return nil, NewTransient(rd.Name(), "request failed: %v", err)
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return nil, NewTransient(rd.Name(), "http status %d", status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, NewPermanent(rd.Name(), "http status %d: %s", status, truncateBody(body))
	}

	var out struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewTransient(rd.Name(), "malformed response")
	}

	if len(out.JSON.Errors) > 0 {
		code := out.JSON.Errors[0][0]
		switch code {
		case "RATELIMIT":
			return nil, NewTransient(rd.Name(), "rate limited: %s", joinRedditError(out.JSON.Errors[0]))
		case "ALREADY_SUB":
			return nil, NewDuplicate(rd.Name(), "submission already exists")
		default:
			return nil, NewPermanent(rd.Name(), "%s", joinRedditError(out.JSON.Errors[0]))
		}
	}

	if out.JSON.Data.Name == "" {
		return nil, NewTransient(rd.Name(), "response missing submission name")
	}

	return &PublishResult{
		PlatformPostID: out.JSON.Data.Name,
		Permalink:      out.JSON.Data.URL,
		PublishedAt:    time.Now().UTC(),
	}, nil
}

// Reddit titles are capped at 300 characters, counted in runes.
func redditTitle(caption string) string {
	runes := []rune(caption)
	if len(runes) <= 300 {
		return caption
	}
	return string(runes[:297]) + "..."
}

func joinRedditError(parts []string) string {
	return strings.Join(parts, " ")
}
