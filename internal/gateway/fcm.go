package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Client talks to the legacy FCM HTTP endpoint, which takes up to 500
// registration ids per request authenticated with a server key.
type Client struct {
	serverKey string
	endpoint  string
	client    *http.Client
}

func NewClient(serverKey, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		serverKey: serverKey,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a server key is available. Running without one
// is a supported mode: broadcasts no-op instead of failing.
func (gateway *Client) Configured() bool {
	return gateway.serverKey != ""
}

// SendBatch delivers one batch of tokens. It returns the decoded gateway
// response (or a status-only fallback when the body is not JSON) and whether
// the gateway reported overall success for the request. A transport error is
// the only error case; a malformed response body is not.
func (gateway *Client) SendBatch(ctx context.Context, tokens []string, title, body string) (map[string]any, bool, error) {
	payload, err := json.Marshal(map[string]any{
		"registration_ids": tokens,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
		"priority": "high",
	})
	if err != nil {
		return nil, false, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, gateway.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "key="+gateway.serverKey)

	response, err := gateway.client.Do(request)
	if err != nil {
		return nil, false, err
	}
	defer response.Body.Close()

	ok := response.StatusCode >= 200 && response.StatusCode <= 299

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return map[string]any{"status": response.StatusCode}, ok, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(responseBody, &decoded); err != nil || decoded == nil {
		return map[string]any{"status": response.StatusCode}, ok, nil
	}

	return decoded, ok, nil
}
