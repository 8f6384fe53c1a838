//go:build !windows

package hotkey

import "errors"

func newPlatformListener(Combo) (Listener, error) {
	return nil, errors.New("hotkey: global hotkeys are only supported on windows; use -trigger-source stdin")
}
