package screenshotter

import (
	"errors"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// ErrNoDisplays нет активных мониторов.
var ErrNoDisplays = errors.New("no active displays")

// Screenshotter снимает весь экран (все мониторы) одним кадром.
type Screenshotter struct {
	logger *zap.SugaredLogger
	// Обёртки над screenshot для подмены в тестах
	numDisplays func() int
	bounds      func(int) image.Rectangle
	captureRect func(image.Rectangle) (*image.RGBA, error)
}

func New(logger *zap.SugaredLogger) *Screenshotter {
	return &Screenshotter{
		logger:      logger,
		numDisplays: screenshot.NumActiveDisplays,
		bounds:      screenshot.GetDisplayBounds,
		captureRect: screenshot.CaptureRect,
	}
}

// Capture возвращает снимок всех мониторов. Если не удалось снять ни один, возвращает ошибку.
func (s *Screenshotter) Capture() (image.Image, error) {
	n := s.numDisplays()
	if n <= 0 {
		return nil, ErrNoDisplays
	}

	// Вычисляем объединённые границы всех мониторов
	union := s.bounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(s.bounds(i))
	}

	canvas := image.NewRGBA(union.Sub(union.Min))
	captured := 0
	var lastErr error
	for i := 0; i < n; i++ {
		b := s.bounds(i)
		img, err := s.captureRect(b)
		if err != nil {
			s.logger.Errorw("Failed to capture display", "index", i, "error", err)
			lastErr = err
			continue
		}
		// Копируем в холст со смещением
		dstPoint := b.Min.Sub(union.Min)
		dstRect := image.Rectangle{Min: dstPoint, Max: dstPoint.Add(b.Size())}
		draw.Draw(canvas, dstRect, img, img.Bounds().Min, draw.Src)
		captured++
	}
	if captured == 0 {
		return nil, lastErr
	}
	return canvas, nil
}
