package report

import (
	"ScreenSolver/internal/app/capture"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Printer выводит итог прогона в консоль пользователю.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.SugaredLogger
}

func NewPrinter(w io.Writer, logger *zap.SugaredLogger) *Printer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Printer{w: w, logger: logger}
}

// Print печатает отчёт: результат захвата, анализа и каждого канала доставки.
func (p *Printer) Print(r capture.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.w, Format(r)); err != nil {
		p.logger.Warnw("Failed to print report", "run", r.RunID, "error", err)
	}
}

// Format текстовое представление отчёта.
func Format(r capture.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== run %s (%s) ===\n", shortID(r.RunID), r.Duration.Round(time.Millisecond))
	if !r.Captured {
		fmt.Fprintf(&b, "  capture: FAILED %s\n", r.CaptureError)
		return b.String()
	}
	if r.Analysis.Success {
		fmt.Fprintf(&b, "  analysis: ok (%d chars)\n", len([]rune(r.Analysis.Text)))
	} else {
		fmt.Fprintf(&b, "  analysis: FAILED [%s] %s\n", r.Analysis.Kind, r.Analysis.Text)
	}
	if len(r.Deliveries) == 0 {
		b.WriteString("  delivery: no channels enabled\n")
	}
	for _, d := range r.Deliveries {
		if d.Success {
			fmt.Fprintf(&b, "  %s: ok %s\n", d.Channel, d.Message)
		} else {
			fmt.Fprintf(&b, "  %s: FAILED [%s] %s\n", d.Channel, d.Kind, d.Message)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
