package ai

import (
	"ScreenSolver/internal/config"
	"ScreenSolver/internal/service/failure"
	imgcodec "ScreenSolver/internal/service/image"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

// VisionClient отправляет текст и скриншот в chat completions API одним HTTP запросом, без повторов.
type VisionClient struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
	prompt   string
	maxTok   int
	logger   *zap.SugaredLogger
}

// NewVisionClient создаёт клиента. httpClient == nil: используется http.DefaultClient
// (таймаутов сверх транспортных нет).
func NewVisionClient(cfg config.VisionConfig, httpClient *http.Client, logger *zap.SugaredLogger) *VisionClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultModel
	}
	prompt := cfg.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = config.DefaultPrompt
	}
	return &VisionClient{
		http:     httpClient,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    model,
		prompt:   prompt,
		maxTok:   cfg.MaxTokens,
		logger:   logger,
	}
}

// Analyze кодирует изображение, отправляет его вместе с промптом и разбирает ответ.
// Пустой prompt заменяется промптом из конфигурации.
func (c *VisionClient) Analyze(ctx context.Context, img image.Image, prompt string) Outcome {
	if c.apiKey == "" {
		return Failure(failure.Configuration, "API key not configured")
	}
	if imgcodec.IsEmpty(img) {
		return Failure(failure.Input, "empty image")
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = c.prompt
	}

	encoded, err := imgcodec.Encode(img)
	if err != nil {
		return Failure(failure.Input, fmt.Sprintf("encode error: %v", err))
	}
	body, err := json.Marshal(c.buildParams(prompt, imgcodec.DataURL(encoded)))
	if err != nil {
		return Failure(failure.Internal, fmt.Sprintf("encode error: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failure(failure.Configuration, fmt.Sprintf("send error: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.logger.Infow("Запрос в OpenAI...", "model", c.model, "bytes", len(body))
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorw("OpenAI request failed", "duration", time.Since(start).String(), "error", err)
		return Failure(failure.Transport, fmt.Sprintf("send error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warnw("OpenAI returned error status", "duration", time.Since(start).String(), "status", resp.StatusCode)
		return Failure(failure.Protocol, fmt.Sprintf("API error: %d - %s", resp.StatusCode, string(b)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure(failure.Transport, fmt.Sprintf("send error: read response: %v", err))
	}
	text, err := parseCompletion(raw)
	if err != nil {
		return Failure(failure.Protocol, fmt.Sprintf("send error: %v", err))
	}
	c.logger.Infow("Ответ OpenAI получен", "duration", time.Since(start).String(), "chars", len(text))
	return Success(text, json.RawMessage(raw))
}

func (c *VisionClient) buildParams(prompt, dataURL string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	}
	if c.maxTok > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTok))
	}
	return params
}

// parseCompletion достаёт choices[0].message.content из конверта ответа.
func parseCompletion(raw []byte) (string, error) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(raw, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("decode response: no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
