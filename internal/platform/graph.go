package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const graphBaseURL = "https://graph.facebook.com/v21.0"

// graphErrorResponse is the error envelope shared by the Meta Graph API
// surfaces (facebook pages, instagram content publishing, whatsapp cloud).
type graphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		IsTransient  bool   `json:"is_transient"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// Graph error codes that resolve on retry: 1/2 unknown/service, 4/17/32
// rate limits, 341 temporary block.
var transientGraphCodes = map[int]struct{}{
	1: {}, 2: {}, 4: {}, 17: {}, 32: {}, 341: {},
}

func classifyGraphError(platform string, status int, body []byte) *Error {
	var ger graphErrorResponse
	_ = json.Unmarshal(body, &ger)

	msg := ger.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("http status %d", status)
	}

	_, transientCode := transientGraphCodes[ger.Error.Code]
	if status >= 500 || status == http.StatusTooManyRequests || ger.Error.IsTransient || transientCode {
		return NewTransient(platform, "%s (code %d)", msg, ger.Error.Code)
	}
	return NewPermanent(platform, "%s (code %d)", msg, ger.Error.Code)
}

func postJSON(ctx context.Context, client *http.Client, endpoint, token string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return do(client, req)
}

func postForm(ctx context.Context, client *http.Client, endpoint, token string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return do(client, req)
}

func do(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, body, nil
}
