package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llmrelay/config"
)

// recordedRequest is what a stub upstream saw.
type recordedRequest struct {
	Method        string
	Authorization string
	ContentType   string
	Raw           map[string]any
	Payload       chatRequest
}

func stubUpstream(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Authorization = r.Header.Get("Authorization")
		rec.ContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &rec.Raw); err != nil {
			t.Errorf("upstream got invalid JSON: %v", err)
		}
		json.Unmarshal(raw, &rec.Payload)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(url string) *Client {
	return NewClient(config.Upstream{
		URL:    url,
		Model:  "deepseek-chat",
		APIKey: "sk-test",
	})
}

func TestComplete_Success(t *testing.T) {
	srv, rec := stubUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Paris"}}]}`)

	got, err := newTestClient(srv.URL).Complete(context.Background(), map[string]any{"message": "capital of France?"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Paris" {
		t.Errorf("Complete = %q; want %q", got, "Paris")
	}

	if rec.Method != http.MethodPost {
		t.Errorf("method = %s; want POST", rec.Method)
	}
	if rec.Authorization != "Bearer sk-test" {
		t.Errorf("Authorization = %q; want %q", rec.Authorization, "Bearer sk-test")
	}
	if rec.ContentType != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", rec.ContentType)
	}
	if rec.Payload.Model != "deepseek-chat" {
		t.Errorf("model = %q; want deepseek-chat", rec.Payload.Model)
	}
	if len(rec.Payload.Messages) != 1 {
		t.Fatalf("got %d messages; want 1", len(rec.Payload.Messages))
	}
	if m := rec.Payload.Messages[0]; m.Role != "user" || m.Content != "capital of France?" {
		t.Errorf("message = %+v; want user/capital of France?", m)
	}
}

func TestComplete_PayloadAlwaysCarriesStreamAndContent(t *testing.T) {
	srv, rec := stubUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	if _, err := newTestClient(srv.URL).Complete(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	stream, ok := rec.Raw["stream"]
	if !ok || stream != false {
		t.Errorf("stream = %v (present %v); want false", stream, ok)
	}
	msgs, _ := rec.Raw["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v; want one entry", rec.Raw["messages"])
	}
	content, ok := msgs[0].(map[string]any)["content"]
	if !ok || content != "" {
		t.Errorf("content = %v (present %v); want empty string", content, ok)
	}
}

func TestComplete_NonOKStatus(t *testing.T) {
	srv, _ := stubUpstream(t, http.StatusInternalServerError, "server error")

	got, err := newTestClient(srv.URL).Complete(context.Background(), map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if want := "Error: 500, server error"; got != want {
		t.Errorf("Complete = %q; want %q", got, want)
	}
}

func TestComplete_Unauthorized(t *testing.T) {
	srv, rec := stubUpstream(t, http.StatusUnauthorized, `{"error":"bad key"}`)

	c := NewClient(config.Upstream{URL: srv.URL, Model: "deepseek-chat"})
	got, err := c.Complete(context.Background(), map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if want := `Error: 401, {"error":"bad key"}`; got != want {
		t.Errorf("Complete = %q; want %q", got, want)
	}
	if rec.Authorization != "Bearer " {
		t.Errorf("Authorization = %q; want %q", rec.Authorization, "Bearer ")
	}
}

func TestComplete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got, err := newTestClient(url).Complete(context.Background(), map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(got, "An error occurred:") {
		t.Errorf("Complete = %q; want prefix %q", got, "An error occurred:")
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(config.Upstream{URL: srv.URL, Timeout: 50 * time.Millisecond})
	got, err := c.Complete(context.Background(), map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(got, "An error occurred:") {
		t.Errorf("Complete = %q; want prefix %q", got, "An error occurred:")
	}
}

func TestComplete_MalformedSuccessBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "no choices", body: `{"choices":[]}`},
		{name: "missing choices", body: `{"id":"x"}`},
		{name: "choice without message", body: `{"choices":[{}]}`},
		{name: "null message", body: `{"choices":[{"message":null}]}`},
		{name: "empty message", body: `{"choices":[{"message":{}}]}`},
		{name: "message without content", body: `{"choices":[{"message":{"role":"assistant"}}]}`},
		{name: "non-string content", body: `{"choices":[{"message":{"content":42}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := stubUpstream(t, http.StatusOK, tt.body)
			got, err := newTestClient(srv.URL).Complete(context.Background(), map[string]any{"message": "hi"})
			if err == nil {
				t.Errorf("Complete = %q, nil; want error", got)
			}
		})
	}
}

func TestComplete_EmptyContentIsNotAnError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty string", body: `{"choices":[{"message":{"role":"assistant","content":""}}]}`},
		{name: "null", body: `{"choices":[{"message":{"content":null}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := stubUpstream(t, http.StatusOK, tt.body)
			got, err := newTestClient(srv.URL).Complete(context.Background(), map[string]any{"message": "hi"})
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if got != "" {
				t.Errorf("Complete = %q; want empty", got)
			}
		})
	}
}

func TestMessageFrom(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  string
	}{
		{name: "string", input: map[string]any{"message": "hello"}, want: "hello"},
		{name: "missing", input: map[string]any{"other": "x"}, want: ""},
		{name: "nil map", input: nil, want: ""},
		{name: "null", input: map[string]any{"message": nil}, want: ""},
		{name: "number", input: map[string]any{"message": float64(42)}, want: "42"},
		{name: "object", input: map[string]any{"message": map[string]any{"a": true}}, want: `{"a":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageFrom(tt.input); got != tt.want {
				t.Errorf("MessageFrom(%v) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}
