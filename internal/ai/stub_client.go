package ai

import (
	"context"
	"image"
)

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct{ text string }

func NewStubClient(text string) *StubClient {
	if text == "" {
		text = "запрос получен"
	}
	return &StubClient{text: text}
}

func (c *StubClient) Analyze(_ context.Context, _ image.Image, _ string) Outcome {
	return Success(c.text, nil)
}
