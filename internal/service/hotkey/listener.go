package hotkey

import (
	"bufio"
	"context"
	"io"
)

// Listener источник срабатываний. Run блокируется до отмены ctx (или конца ввода)
// и вызывает fn на каждое срабатывание. fn не должна блокировать надолго.
type Listener interface {
	Run(ctx context.Context, fn func()) error
}

// NewListener глобальный хоткей ОС. На платформах без поддержки возвращает ошибку.
func NewListener(combo Combo) (Listener, error) {
	return newPlatformListener(combo)
}

// StdinListener срабатывает на каждую строку ввода (Enter в консоли).
type StdinListener struct {
	r io.Reader
}

func NewStdinListener(r io.Reader) *StdinListener { return &StdinListener{r: r} }

func (l *StdinListener) Run(ctx context.Context, fn func()) error {
	lines := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(l.r)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		errCh <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-lines:
			fn()
		case err := <-errCh:
			return err
		}
	}
}
