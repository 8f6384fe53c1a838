package delivery

import (
	"ScreenSolver/internal/service/failure"
	"context"
	"fmt"
	"os"
	"strings"
)

// LocalFile сохраняет ответ в текстовый файл, перезаписывая предыдущий.
type LocalFile struct {
	path string
}

func NewLocalFile(path string) *LocalFile { return &LocalFile{path: path} }

func (l *LocalFile) Channel() Channel { return Local }

func (l *LocalFile) Deliver(_ context.Context, content string, _ Meta) Outcome {
	if strings.TrimSpace(l.path) == "" {
		return fail(Local, failure.Configuration, "response file path not configured")
	}
	if err := os.WriteFile(l.path, []byte(content), 0o644); err != nil {
		return fail(Local, failure.IO, fmt.Sprintf("save error: %v", err))
	}
	return ok(Local, fmt.Sprintf("response saved to %s", l.path))
}
