package main

import (
	"ScreenSolver/internal/ai"
	"ScreenSolver/internal/config"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Разовый анализ изображения из файла без доставки: vision [флаги] <файл>
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

	if len(cfg.Args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vision [flags] <image.png|image.jpg>")
		os.Exit(2)
	}
	path := cfg.Args[0]

	img, err := readImage(path)
	if err != nil {
		sugar.Fatalw("Failed to read image", "path", path, "error", err)
	}

	var analyzer ai.Analyzer
	if cfg.DryRun {
		analyzer = ai.NewStubClient("")
	} else {
		analyzer = ai.NewVisionClient(cfg.Vision, &http.Client{Timeout: 2 * time.Minute}, sugar)
	}

	sugar.Infow("Analyzing image", "path", path, "model", cfg.Vision.Model, "bounds", img.Bounds().String())
	out := analyzer.Analyze(context.Background(), img, cfg.Vision.Prompt)
	if !out.Success {
		sugar.Errorw("Analysis failed", "kind", out.Kind, "reason", out.Text)
		fmt.Println(out.Text)
		_ = logger.Sync()
		os.Exit(1)
	}
	fmt.Println(out.Text)
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
