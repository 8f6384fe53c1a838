package main

import (
	"ScreenSolver/internal/ai"
	"ScreenSolver/internal/app/capture"
	"ScreenSolver/internal/app/report"
	"ScreenSolver/internal/app/screenshotter"
	"ScreenSolver/internal/config"
	"ScreenSolver/internal/service/delivery"
	"ScreenSolver/internal/service/hotkey"
	imgcodec "ScreenSolver/internal/service/image"
	"ScreenSolver/internal/service/notify"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"DryRun", cfg.DryRun,
		"Model", cfg.Vision.Model,
		"TriggerSource", cfg.Trigger.Source,
		"Hotkey", cfg.Trigger.Hotkey,
		"SaveLocally", cfg.Local.Enabled,
		"SendEmail", cfg.Email.Enabled,
		"SendWebhook", cfg.Webhook.Enabled,
	)
	if cfg.DebugMode {
		sugar.Debugw("SMTP", "config", cfg.SMTP.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{}

	// Анализатор: без ключа приложение всё равно запускается, ошибка будет доставлена как ответ
	var analyzer ai.Analyzer
	if cfg.DryRun {
		analyzer = ai.NewStubClient("")
	} else {
		if cfg.Vision.APIKey == "" {
			sugar.Warnw("OPENAI_API_KEY is not set; every capture will report a configuration error")
		}
		analyzer = ai.NewVisionClient(cfg.Vision, httpClient, sugar)
	}

	attach := cfg.Email.Enabled && cfg.Email.AttachScreenshot
	if attach {
		// Вложения прошлых аварийно завершённых запусков
		imgcodec.NewCleaner(sugar).Clean(os.TempDir(), capture.TempPattern, time.Hour, cfg.DebugMode)
	}

	bus := newReportBus(ctx, cfg, sugar)
	orch := capture.New(
		screenshotter.New(sugar),
		analyzer,
		buildChannels(cfg, httpClient),
		capture.Options{
			Prompt:           cfg.Vision.Prompt,
			AttachScreenshot: attach,
			Publisher:        bus,
		},
		sugar,
	)

	listener, err := buildListener(cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to set up trigger", "error", err)
	}

	sugar.Infow("Waiting for trigger", "source", cfg.Trigger.Source, "hotkey", cfg.Trigger.Hotkey)
	if err := listener.Run(ctx, func() { orch.Trigger(ctx) }); err != nil && ctx.Err() == nil {
		sugar.Errorw("Trigger listener stopped", "error", err)
	}

	// Дожидаемся начатого прогона: он не прерывается при остановке
	sugar.Infow("Shutting down, waiting for running capture")
	orch.Wait()
	bus.WaitAsync()
	sugar.Infow("Stopped", "dropped_triggers", orch.Dropped())
}

func buildChannels(cfg *config.Config, httpClient *http.Client) []delivery.Deliverer {
	var channels []delivery.Deliverer
	if cfg.Local.Enabled {
		channels = append(channels, delivery.NewLocalFile(cfg.Local.Path))
	}
	if cfg.Email.Enabled {
		channels = append(channels, delivery.NewEmailSender(cfg.Email.To, cfg.Email.Subject, cfg.SMTP))
	}
	if cfg.Webhook.Enabled {
		channels = append(channels, delivery.NewWebhookSender(cfg.Webhook.URL, cfg.Webhook.Title, httpClient))
	}
	return channels
}

// newReportBus шина отчётов: печать в консоль и звук по завершении.
func newReportBus(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) evbus.Bus {
	bus := evbus.New()

	printer := report.NewPrinter(os.Stdout, sugar)
	if err := bus.SubscribeAsync(capture.ReportTopic, printer.Print, true); err != nil {
		sugar.Errorw("Failed to subscribe report printer", "error", err)
	}

	sound := notify.NewSoundNotifier(sugar, cfg.NotificationSoundPath, nil)
	if sound.Enabled() {
		base := context.WithoutCancel(ctx)
		onReport := func(r capture.Report) {
			if !r.Captured {
				return
			}
			playCtx, cancel := context.WithTimeout(base, 10*time.Second)
			defer cancel()
			_ = sound.Play(playCtx)
		}
		if err := bus.SubscribeAsync(capture.ReportTopic, onReport, true); err != nil {
			sugar.Errorw("Failed to subscribe sound notifier", "error", err)
		}
	}
	return bus
}

func buildListener(cfg *config.Config, sugar *zap.SugaredLogger) (hotkey.Listener, error) {
	if cfg.Trigger.Source == "stdin" {
		sugar.Infow("Press Enter to capture the screen")
		return hotkey.NewStdinListener(os.Stdin), nil
	}
	combo, err := hotkey.Parse(cfg.Trigger.Hotkey)
	if err != nil {
		return nil, err
	}
	l, err := hotkey.NewListener(combo)
	if err != nil {
		// На платформах без глобальных хоткеев переходим на stdin
		sugar.Warnw("Global hotkey unavailable, falling back to stdin", "error", err)
		sugar.Infow("Press Enter to capture the screen")
		return hotkey.NewStdinListener(os.Stdin), nil
	}
	return l, nil
}
