package delivery

import (
	"ScreenSolver/internal/service/failure"
	"context"
)

// Channel имя канала доставки.
type Channel string

const (
	Local   Channel = "local"
	Email   Channel = "email"
	Webhook Channel = "webhook"
)

// Meta необязательные данные сообщения.
type Meta struct {
	Title       string   // Тема письма / заголовок вебхука; пусто: из конфигурации канала
	Attachments []string // Пути к файлам, прикладываются только к письму
}

// Outcome результат одной доставки. Каналы независимы: неуспех одного не мешает остальным.
type Outcome struct {
	Channel Channel
	Success bool
	Message string
	Kind    failure.Kind
}

// Deliverer канал доставки ответа пользователю. Deliver не возвращает ошибку:
// неуспех описывается Outcome. Реализации не разделяют изменяемого состояния.
type Deliverer interface {
	Channel() Channel
	Deliver(ctx context.Context, content string, meta Meta) Outcome
}

func ok(ch Channel, msg string) Outcome {
	return Outcome{Channel: ch, Success: true, Message: msg}
}

func fail(ch Channel, kind failure.Kind, msg string) Outcome {
	return Outcome{Channel: ch, Kind: kind, Message: msg}
}
