package ai

import (
	"ScreenSolver/internal/config"
	"ScreenSolver/internal/service/failure"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return t.next.RoundTrip(r)
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 10, G: 120, B: 200, A: 255}}, image.Point{}, draw.Src)
	return img
}

func newTestClient(endpoint, key string, transport http.RoundTripper) *VisionClient {
	return NewVisionClient(config.VisionConfig{
		APIKey:   key,
		Model:    "test-model",
		Endpoint: endpoint,
		Prompt:   "default prompt",
	}, &http.Client{Transport: transport}, nil)
}

func TestVisionClient_Success(t *testing.T) {
	const body = `{"choices":[{"message":{"content":"def f(): pass"}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "sk-test", http.DefaultTransport)
	out := c.Analyze(context.Background(), solidImage(100, 100), "")

	assert.True(t, out.Success)
	assert.Equal(t, "def f(): pass", out.Text)
	assert.Equal(t, failure.None, out.Kind)
	assert.JSONEq(t, body, string(out.Raw))
}

func TestVisionClient_RequestShape(t *testing.T) {
	var (
		gotAuth string
		gotType string
		payload map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "sk-secret", http.DefaultTransport)
	out := c.Analyze(context.Background(), solidImage(8, 8), "")
	require.True(t, out.Success, out.Text)

	assert.Equal(t, "Bearer sk-secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "test-model", payload["model"])
	assert.NotContains(t, payload, "max_tokens")

	messages, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])

	content, ok := msg["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 2)
	text := content[0].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "default prompt", text["text"])
	img := content[1].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	url := img["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestVisionClient_CustomPromptAndMaxTokens(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	c := NewVisionClient(config.VisionConfig{APIKey: "k", Endpoint: server.URL, MaxTokens: 4096}, nil, nil)
	out := c.Analyze(context.Background(), solidImage(4, 4), "what is this?")
	require.True(t, out.Success, out.Text)

	assert.Equal(t, config.DefaultModel, payload["model"])
	assert.EqualValues(t, 4096, payload["max_tokens"])
	content := payload["messages"].([]any)[0].(map[string]any)["content"].([]any)
	assert.Equal(t, "what is this?", content[0].(map[string]any)["text"])
}

func TestVisionClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	transport := &countingTransport{next: http.DefaultTransport}
	c := newTestClient(server.URL, "sk-test", transport)
	out := c.Analyze(context.Background(), solidImage(10, 10), "")

	assert.False(t, out.Success)
	assert.Equal(t, "API error: 429 - rate limited", out.Text)
	assert.Equal(t, failure.Protocol, out.Kind)
	assert.Nil(t, out.Raw)
	assert.EqualValues(t, 1, transport.calls.Load(), "no retries")
}

func TestVisionClient_MissingAPIKey(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	c := newTestClient("http://127.0.0.1:1", "  ", transport)

	out := c.Analyze(context.Background(), solidImage(10, 10), "")

	assert.False(t, out.Success)
	assert.Equal(t, "API key not configured", out.Text)
	assert.Equal(t, failure.Configuration, out.Kind)
	assert.EqualValues(t, 0, transport.calls.Load())
}

func TestVisionClient_EmptyImage(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	c := newTestClient("http://127.0.0.1:1", "sk-test", transport)

	out := c.Analyze(context.Background(), nil, "")

	assert.False(t, out.Success)
	assert.Equal(t, failure.Input, out.Kind)
	assert.EqualValues(t, 0, transport.calls.Load())
}

func TestVisionClient_TransportError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := newTestClient("http://"+addr, "sk-test", http.DefaultTransport)
	out := c.Analyze(context.Background(), solidImage(10, 10), "")

	assert.False(t, out.Success)
	assert.Equal(t, failure.Transport, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, "send error: "), out.Text)
}

func TestVisionClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "sk-test", http.DefaultTransport)
	out := c.Analyze(context.Background(), solidImage(10, 10), "")

	assert.False(t, out.Success)
	assert.Equal(t, failure.Protocol, out.Kind)
	assert.Contains(t, out.Text, "no choices")
}

func TestStubClient(t *testing.T) {
	out := NewStubClient("").Analyze(context.Background(), nil, "")
	assert.True(t, out.Success)
	assert.Equal(t, "запрос получен", out.Text)
}
