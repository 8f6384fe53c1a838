package delivery

import (
	"ScreenSolver/internal/config"
	"ScreenSolver/internal/service/failure"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wneessen/go-mail"
)

// Вложения с этими расширениями идут как картинки, остальные как текст.
var imageTypes = map[string]mail.ContentType{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// EmailSender отправляет ответ письмом через SMTP со STARTTLS до авторизации.
type EmailSender struct {
	to      string
	subject string
	smtp    config.SMTPConfig
	send    func(ctx context.Context, smtp config.SMTPConfig, msg *mail.Msg) error
}

func NewEmailSender(to, subject string, smtp config.SMTPConfig) *EmailSender {
	return &EmailSender{
		to:      strings.TrimSpace(to),
		subject: subject,
		smtp:    smtp,
		send:    dialAndSend,
	}
}

func (e *EmailSender) Channel() Channel { return Email }

func (e *EmailSender) Deliver(ctx context.Context, content string, meta Meta) Outcome {
	if e.to == "" {
		return fail(Email, failure.Configuration, "destination email not configured")
	}
	if strings.TrimSpace(e.smtp.Host) == "" || e.smtp.Username == "" || e.smtp.Password == "" {
		return fail(Email, failure.Configuration, "SMTP configuration incomplete")
	}

	msg, err := e.buildMessage(content, meta)
	if err != nil {
		return fail(Email, failure.Input, fmt.Sprintf("email build error: %v", err))
	}
	if err := e.send(ctx, e.smtp, msg); err != nil {
		return fail(Email, failure.Transport, fmt.Sprintf("email send error: %v", err))
	}
	return ok(Email, fmt.Sprintf("email sent to %s", e.to))
}

func (e *EmailSender) buildMessage(content string, meta Meta) (*mail.Msg, error) {
	subject := meta.Title
	if subject == "" {
		subject = e.subject
	}

	msg := mail.NewMsg()
	if err := msg.From(e.smtp.Username); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(e.to); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, content)

	for _, path := range meta.Attachments {
		if err := attach(msg, path); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// attach прикладывает файл с типом по расширению. Несуществующие файлы пропускаются.
func attach(msg *mail.Msg, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read attachment %s: %w", path, err)
	}
	ct, isImage := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !isImage {
		ct = mail.TypeTextPlain
	}
	if err := msg.AttachReader(filepath.Base(path), bytes.NewReader(data), mail.WithFileContentType(ct)); err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	return nil
}

// dialAndSend открывает новое соединение на каждое письмо; STARTTLS обязателен.
func dialAndSend(ctx context.Context, smtp config.SMTPConfig, msg *mail.Msg) error {
	client, err := mail.NewClient(smtp.Host,
		mail.WithPort(smtp.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(smtp.Username),
		mail.WithPassword(smtp.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
