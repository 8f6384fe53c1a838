package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Промпт и модель по умолчанию, перекрываются ANALYSIS_PROMPT и OPENAI_MODEL.
const (
	DefaultPrompt   = "This is a programming question I need to solve. Analyze the image and provide the solution as code with comments only. First a simple dictionary-based solution (if it makes sense), then a more robust one. Answer in English."
	DefaultModel    = "gpt-4o-mini-2024-07-18"
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
)

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага
	DryRun    bool `env:"DRY_RUN"`    // Не ходить в OpenAI, отвечать заглушкой

	Vision  VisionConfig
	Trigger TriggerConfig
	Local   LocalConfig
	Email   EmailConfig
	SMTP    SMTPConfig
	Webhook WebhookConfig

	NotificationSoundPath string `env:"NOTIFICATION_SOUND_PATH"` // Звук по завершении прогона; пусто: без звука

	Args []string // Позиционные аргументы после флагов
}

// VisionConfig параметры запроса к модели.
type VisionConfig struct {
	APIKey    string `env:"OPENAI_API_KEY"`
	Model     string `env:"OPENAI_MODEL"`
	Endpoint  string `env:"OPENAI_ENDPOINT"`
	Prompt    string `env:"ANALYSIS_PROMPT"`
	MaxTokens int    `env:"OPENAI_MAX_TOKENS"` // 0: поле не отправляется
}

// TriggerConfig источник срабатываний.
type TriggerConfig struct {
	Hotkey string `env:"HOTKEY"`         // напр. ctrl+shift+l
	Source string `env:"TRIGGER_SOURCE"` // hotkey|stdin
}

// LocalConfig сохранение ответа в файл.
type LocalConfig struct {
	Enabled bool   `env:"SAVE_LOCALLY"`
	Path    string `env:"RESPONSE_FILE"`
}

// EmailConfig отправка ответа письмом.
type EmailConfig struct {
	Enabled          bool   `env:"SEND_EMAIL"`
	To               string `env:"EMAIL"` // Адрес назначения
	Subject          string `env:"EMAIL_SUBJECT"`
	AttachScreenshot bool   `env:"EMAIL_ATTACH_SCREENSHOT"`
}

// SMTPConfig учётные данные SMTP. Пароль нигде не логируется.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"` // Пусто: берём EMAIL
	Password string `env:"PASSWORD_SMTP"`
}

// String маскирует пароль, чтобы конфиг можно было безопасно вывести в лог.
func (s SMTPConfig) String() string {
	secret := ""
	if s.Password != "" {
		secret = "***"
	}
	return fmt.Sprintf("%s@%s:%d (password %q)", s.Username, s.Host, s.Port, secret)
}

// WebhookConfig отправка ответа в чат через вебхук.
type WebhookConfig struct {
	Enabled bool   `env:"SEND_WEBHOOK"`
	URL     string `env:"WEBHOOK_URL"`
	Title   string `env:"WEBHOOK_TITLE"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode: false,
		Vision: VisionConfig{
			Model:    DefaultModel,
			Endpoint: DefaultEndpoint,
			Prompt:   DefaultPrompt,
		},
		Trigger: TriggerConfig{
			Hotkey: "ctrl+shift+l",
			Source: "hotkey",
		},
		Local: LocalConfig{
			Enabled: true,
			Path:    "response.txt",
		},
		Email: EmailConfig{
			Enabled: true,
			Subject: "Programming question solution",
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Webhook: WebhookConfig{
			Title: "Programming question solution",
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и флагов командной строки.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load собирает конфигурацию: дефолты → окружение → флаги из args.
func Load(args []string) (*Config, error) {
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("solver", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "не отправлять скриншот в OpenAI, ответить заглушкой")
	// Модель
	fs.StringVar(&cfg.Vision.Model, "model", cfg.Vision.Model, "идентификатор модели OpenAI")
	fs.StringVar(&cfg.Vision.Endpoint, "endpoint", cfg.Vision.Endpoint, "адрес chat completions API")
	fs.StringVar(&cfg.Vision.Prompt, "prompt", cfg.Vision.Prompt, "текст промпта, отправляемого вместе со скриншотом")
	fs.IntVar(&cfg.Vision.MaxTokens, "max-tokens", cfg.Vision.MaxTokens, "ограничение max_tokens (0: не отправлять)")
	// Триггер
	fs.StringVar(&cfg.Trigger.Hotkey, "hotkey", cfg.Trigger.Hotkey, "комбинация клавиш, напр. ctrl+shift+l")
	fs.StringVar(&cfg.Trigger.Source, "trigger-source", cfg.Trigger.Source, "источник срабатываний: hotkey|stdin")
	// Каналы доставки
	fs.BoolVar(&cfg.Local.Enabled, "save-locally", cfg.Local.Enabled, "сохранять ответ в файл")
	fs.StringVar(&cfg.Local.Path, "response-file", cfg.Local.Path, "путь к файлу ответа")
	fs.BoolVar(&cfg.Email.Enabled, "send-email", cfg.Email.Enabled, "отправлять ответ по email")
	fs.StringVar(&cfg.Email.To, "email", cfg.Email.To, "адрес получателя")
	fs.StringVar(&cfg.Email.Subject, "email-subject", cfg.Email.Subject, "тема письма")
	fs.BoolVar(&cfg.Email.AttachScreenshot, "email-attach-screenshot", cfg.Email.AttachScreenshot, "прикладывать скриншот к письму")
	fs.StringVar(&cfg.SMTP.Host, "smtp-host", cfg.SMTP.Host, "SMTP сервер")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", cfg.SMTP.Port, "SMTP порт (STARTTLS)")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", cfg.SMTP.Username, "логин SMTP (по умолчанию EMAIL)")
	fs.BoolVar(&cfg.Webhook.Enabled, "send-webhook", cfg.Webhook.Enabled, "отправлять ответ в вебхук")
	fs.StringVar(&cfg.Webhook.URL, "webhook-url", cfg.Webhook.URL, "URL вебхука")
	fs.StringVar(&cfg.Webhook.Title, "webhook-title", cfg.Webhook.Title, "заголовок сообщения вебхука")
	fs.StringVar(&cfg.NotificationSoundPath, "notification-sound-path", cfg.NotificationSoundPath, "звук по завершении обработки (mp3 или wav)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	// EMAIL служит и адресом получателя, и логином отправителя
	if strings.TrimSpace(cfg.SMTP.Username) == "" {
		cfg.SMTP.Username = cfg.Email.To
	}
	cfg.Trigger.Source = strings.ToLower(strings.TrimSpace(cfg.Trigger.Source))
	switch cfg.Trigger.Source {
	case "hotkey", "stdin":
	default:
		return nil, fmt.Errorf("unknown trigger source %q; use hotkey|stdin", cfg.Trigger.Source)
	}
	return cfg, nil
}
