package delivery

import (
	"ScreenSolver/internal/service/failure"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

// Статусы, которые чат-вебхуки возвращают при успешном приёме.
var acceptedStatuses = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}

type webhookPayload struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

// WebhookSender отправляет ответ JSON-ом в чат через вебхук.
type WebhookSender struct {
	http  *http.Client
	url   string
	title string
}

func NewWebhookSender(url, title string, httpClient *http.Client) *WebhookSender {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookSender{http: httpClient, url: strings.TrimSpace(url), title: title}
}

func (w *WebhookSender) Channel() Channel { return Webhook }

func (w *WebhookSender) Deliver(ctx context.Context, content string, meta Meta) Outcome {
	if w.url == "" {
		return fail(Webhook, failure.Configuration, "webhook URL not configured")
	}
	title := meta.Title
	if title == "" {
		title = w.title
	}
	body, err := json.Marshal(webhookPayload{Content: content, Title: title})
	if err != nil {
		return fail(Webhook, failure.Internal, fmt.Sprintf("webhook error: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fail(Webhook, failure.Configuration, fmt.Sprintf("webhook error: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fail(Webhook, failure.Transport, fmt.Sprintf("webhook error: %v", err))
	}
	defer resp.Body.Close()

	if !slices.Contains(acceptedStatuses, resp.StatusCode) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fail(Webhook, failure.Protocol, fmt.Sprintf("webhook error: %d - %s", resp.StatusCode, string(b)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return ok(Webhook, "response sent to webhook")
}
