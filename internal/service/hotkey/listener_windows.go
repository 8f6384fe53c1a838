//go:build windows

package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"syscall"

	"github.com/lxn/win"
)

// Обёртки для функций, которых нет в lxn/win
var (
	user32                = syscall.NewLazyDLL("user32.dll")
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
	procGetCurrentThread  = kernel32.NewProc("GetCurrentThreadId")
)

const hotkeyID = 1

type winListener struct {
	combo Combo
}

func newPlatformListener(combo Combo) (Listener, error) { return &winListener{combo: combo}, nil }

// Run регистрирует хоткей на очереди сообщений текущего потока (без окна)
// и крутит цикл сообщений до отмены ctx.
func (w *winListener) Run(ctx context.Context, fn func()) error {
	// WinAPI должен жить в закреплённом системном потоке
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, _, _ := procGetCurrentThread.Call()
	r, _, callErr := procRegisterHotKey.Call(0, hotkeyID, uintptr(w.combo.Modifiers), uintptr(w.combo.Key))
	if r == 0 {
		return fmt.Errorf("hotkey: RegisterHotKey %q: %v", w.combo.Text, callErr)
	}
	defer procUnregisterHotKey.Call(0, hotkeyID)

	// По отмене контекста будим GetMessage через WM_QUIT
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			procPostThreadMessage.Call(tid, win.WM_QUIT, 0, 0)
		case <-stop:
		}
	}()

	msg := new(win.MSG)
	for {
		r := win.GetMessage(msg, 0, 0, 0)
		if r == 0 || r == -1 { // WM_QUIT или ошибка
			break
		}
		if msg.Message == win.WM_HOTKEY && msg.WParam == hotkeyID {
			fn()
			continue
		}
		win.TranslateMessage(msg)
		win.DispatchMessage(msg)
	}
	return context.Cause(ctx)
}
