package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"llmrelay/config"
)

// Client sends single-message chat completions to the upstream API.
// It is safe for concurrent use.
type Client struct {
	cfg        config.Upstream
	httpClient *http.Client
}

// NewClient creates a Client for the given upstream settings. A zero
// Timeout leaves the http.Client without a deadline.
func NewClient(cfg config.Upstream) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Complete forwards input["message"] to the upstream and returns the first
// completion's text.
//
// Upstream failures are not errors: a non-200 status comes back as
// "Error: <status>, <body>" and a transport failure as
// "An error occurred: <err>". A non-nil error means the upstream answered
// 200 with a body that has no completion in it.
func (c *Client) Complete(ctx context.Context, input map[string]any) (string, error) {
	payload := newChatRequest(c.cfg.Model, MessageFrom(input))
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return transportError(err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err), nil
	}
	log.Debugf("Upstream answered %d (%d bytes)", resp.StatusCode, len(respBody))

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error: %d, %s", resp.StatusCode, respBody), nil
	}

	return completionText(respBody)
}

// completionText extracts choices[0].message.content. Every key on that
// path must be present; a null content reads as "".
func completionText(body []byte) (string, error) {
	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse upstream response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in upstream response")
	}
	message := completion.Choices[0].Message
	if message == nil {
		return "", fmt.Errorf("no message in upstream choice")
	}
	raw, ok := message["content"]
	if !ok {
		return "", fmt.Errorf("no content in upstream message")
	}
	var content *string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", fmt.Errorf("upstream content is not a string: %w", err)
	}
	if content == nil {
		return "", nil
	}
	return *content, nil
}

func transportError(err error) string {
	return fmt.Sprintf("An error occurred: %v", err)
}
