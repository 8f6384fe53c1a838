package capture

import (
	"ScreenSolver/internal/ai"
	"ScreenSolver/internal/service/delivery"
	"ScreenSolver/internal/service/failure"
	imgcodec "ScreenSolver/internal/service/image"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportTopic топик шины, в который публикуется Report каждого завершённого прогона.
const ReportTopic = "capture:report"

// TempPattern маска временных PNG вложений в Options.TempDir.
const TempPattern = "capture-*.png"

// Capturer источник скриншота. nil изображение или ошибка: прогон завершается без анализа.
type Capturer interface {
	Capture() (image.Image, error)
}

// Publisher шина событий (EventBus.Bus подходит).
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Options параметры прогона.
type Options struct {
	Prompt           string    // Пусто: промпт анализатора по умолчанию
	Title            string    // Тема письма / заголовок вебхука
	AttachScreenshot bool      // Прикладывать скриншот (PNG) к письму
	TempDir          string    // Каталог для временного PNG; пусто: os.TempDir()
	Publisher        Publisher // Опционально
}

// Report итог одного прогона.
type Report struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Captured     bool
	CaptureError string
	Analysis     ai.Outcome
	Deliveries   []delivery.Outcome
}

// Orchestrator связывает триггер → захват → анализ → доставку.
// Одновременно выполняется не более одного прогона; лишние триггеры отбрасываются.
type Orchestrator struct {
	guard    Guard
	capturer Capturer
	analyzer ai.Analyzer
	channels []delivery.Deliverer
	opts     Options
	logger   *zap.SugaredLogger
	wg       sync.WaitGroup
	dropped  atomic.Int64
}

var channelOrder = map[delivery.Channel]int{
	delivery.Local:   0,
	delivery.Email:   1,
	delivery.Webhook: 2,
}

func New(capturer Capturer, analyzer ai.Analyzer, channels []delivery.Deliverer, opts Options, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	// Порядок доставки фиксирован: файл, почта, вебхук
	ordered := slices.Clone(channels)
	slices.SortStableFunc(ordered, func(a, b delivery.Deliverer) int {
		return channelOrder[a.Channel()] - channelOrder[b.Channel()]
	})
	return &Orchestrator{
		capturer: capturer,
		analyzer: analyzer,
		channels: ordered,
		opts:     opts,
		logger:   logger,
	}
}

// Trigger запускает прогон в отдельной горутине и сразу возвращается.
// Guard проверяет сама горутина, поэтому слушатель не блокируется.
func (o *Orchestrator) Trigger(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.Run(ctx)
	}()
}

// Wait ждёт завершения всех запущенных Trigger горутин.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// Dropped число отброшенных триггеров с момента запуска.
func (o *Orchestrator) Dropped() int64 { return o.dropped.Load() }

// Run выполняет прогон синхронно. false: прогон уже шёл и триггер отброшен.
// Начатый прогон не отменяется отменой ctx.
func (o *Orchestrator) Run(ctx context.Context) (Report, bool) {
	if !o.guard.TryAcquire() {
		n := o.dropped.Add(1)
		o.logger.Infow("Capture in progress, trigger dropped", "dropped", n)
		return Report{}, false
	}
	r := o.runGuarded(context.WithoutCancel(ctx))
	if o.opts.Publisher != nil {
		o.opts.Publisher.Publish(ReportTopic, r)
	}
	return r, true
}

func (o *Orchestrator) runGuarded(ctx context.Context) (r Report) {
	defer o.guard.Release()

	r = Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := o.logger.With("run", r.RunID)
	defer func() { r.Duration = time.Since(r.StartedAt) }()
	log.Infow("Capture started")

	// Capturing
	img, err := o.capture()
	if err != nil {
		r.CaptureError = err.Error()
		log.Errorw("Screen capture failed", "error", err)
		return r
	}
	r.Captured = true

	// Analyzing
	r.Analysis = o.analyze(ctx, img)
	if r.Analysis.Success {
		log.Infow("Analysis done", "chars", len(r.Analysis.Text))
	} else {
		log.Warnw("Analysis failed", "kind", r.Analysis.Kind, "reason", r.Analysis.Text)
	}

	// Delivering: текст ошибки тоже доставляется, чтобы пользователь узнал о ней
	meta := delivery.Meta{Title: o.opts.Title}
	if o.opts.AttachScreenshot {
		if path, cleanup, perr := o.writeTempPNG(img); perr != nil {
			log.Warnw("Failed to save screenshot attachment", "error", perr)
		} else {
			defer cleanup()
			meta.Attachments = []string{path}
		}
	}
	r.Deliveries = make([]delivery.Outcome, 0, len(o.channels))
	for _, ch := range o.channels {
		out := o.deliver(ctx, ch, r.Analysis.Text, meta)
		if out.Success {
			log.Infow("Delivered", "channel", out.Channel, "message", out.Message)
		} else {
			log.Warnw("Delivery failed", "channel", out.Channel, "kind", out.Kind, "message", out.Message)
		}
		r.Deliveries = append(r.Deliveries, out)
	}
	log.Infow("Capture finished", "duration", time.Since(r.StartedAt).String())
	return r
}

func (o *Orchestrator) capture() (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("capture panic: %v", p)
		}
	}()
	img, err = o.capturer.Capture()
	if err != nil {
		return nil, err
	}
	if imgcodec.IsEmpty(img) {
		return nil, errors.New("capture returned no image")
	}
	return img, nil
}

func (o *Orchestrator) analyze(ctx context.Context, img image.Image) (out ai.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = ai.Failure(failure.Internal, fmt.Sprintf("analysis error: %v", p))
		}
	}()
	return o.analyzer.Analyze(ctx, img, o.opts.Prompt)
}

func (o *Orchestrator) deliver(ctx context.Context, ch delivery.Deliverer, content string, meta delivery.Meta) (out delivery.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = delivery.Outcome{Channel: ch.Channel(), Kind: failure.Internal, Message: fmt.Sprintf("delivery error: %v", p)}
		}
	}()
	return ch.Deliver(ctx, content, meta)
}

// writeTempPNG сохраняет скриншот во временный файл на время прогона.
func (o *Orchestrator) writeTempPNG(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp(o.opts.TempDir, TempPattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	_ = f.Close()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.logger.Warnw("Failed to remove screenshot attachment", "path", path, "error", err)
		}
	}
	if err := imgcodec.WritePNG(path, img); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
