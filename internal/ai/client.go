package ai

import (
	"ScreenSolver/internal/service/failure"
	"context"
	"encoding/json"
	"image"
)

// Analyzer интерфейс для анализа скриншота моделью. Все реализации должны быть взаимозаменяемыми.
// Analyze никогда не возвращает ошибку: любой неуспех описывается Outcome.
type Analyzer interface {
	Analyze(ctx context.Context, img image.Image, prompt string) Outcome
}

// Outcome результат анализа: либо текст ответа модели, либо причина неуспеха.
// Text доставляется пользователю в обоих случаях.
type Outcome struct {
	Success bool
	Text    string
	Raw     json.RawMessage // Полный ответ API, только при Success
	Kind    failure.Kind
}

func Success(text string, raw json.RawMessage) Outcome {
	return Outcome{Success: true, Text: text, Raw: raw}
}

func Failure(kind failure.Kind, reason string) Outcome {
	return Outcome{Kind: kind, Text: reason}
}
