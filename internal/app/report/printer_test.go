package report

import (
	"ScreenSolver/internal/ai"
	"ScreenSolver/internal/app/capture"
	"ScreenSolver/internal/service/delivery"
	"ScreenSolver/internal/service/failure"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormat_Deliveries(t *testing.T) {
	r := capture.Report{
		RunID:    "0123456789abcdef",
		Duration: 1500 * time.Millisecond,
		Captured: true,
		Analysis: ai.Failure(failure.Protocol, "API error: 429 - rate limited"),
		Deliveries: []delivery.Outcome{
			{Channel: delivery.Local, Success: true, Message: "response saved to response.txt"},
			{Channel: delivery.Email, Kind: failure.Configuration, Message: "SMTP configuration incomplete"},
		},
	}

	out := Format(r)

	assert.Equal(t, "=== run 01234567 (1.5s) ===\n"+
		"  analysis: FAILED [protocol] API error: 429 - rate limited\n"+
		"  local: ok response saved to response.txt\n"+
		"  email: FAILED [configuration] SMTP configuration incomplete\n", out)
}

func TestFormat_CaptureFailed(t *testing.T) {
	out := Format(capture.Report{RunID: "abc", CaptureError: "no active displays"})

	assert.Contains(t, out, "run abc")
	assert.Contains(t, out, "capture: FAILED no active displays")
	assert.NotContains(t, out, "analysis")
}

func TestFormat_NoChannels(t *testing.T) {
	out := Format(capture.Report{RunID: "abc", Captured: true, Analysis: ai.Success("ответ", nil)})

	assert.Contains(t, out, "analysis: ok (5 chars)")
	assert.Contains(t, out, "no channels enabled")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrinter_Print(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, nil).Print(capture.Report{RunID: "abc", Captured: true, Analysis: ai.Success("x", nil)})
	assert.Contains(t, buf.String(), "analysis: ok")

	core, logs := observer.New(zap.WarnLevel)
	NewPrinter(failingWriter{}, zap.New(core).Sugar()).Print(capture.Report{RunID: "abc"})
	assert.Equal(t, 1, logs.FilterMessage("Failed to print report").Len())
}
