package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Модификаторы RegisterHotKey.
const (
	ModAlt      uint32 = 0x0001
	ModControl  uint32 = 0x0002
	ModShift    uint32 = 0x0004
	ModWin      uint32 = 0x0008
	ModNoRepeat uint32 = 0x4000 // удержание клавиши не повторяет срабатывание
)

// Combo разобранная комбинация клавиш: модификаторы и виртуальный код клавиши.
type Combo struct {
	Modifiers uint32
	Key       uint32
	Text      string
}

var modifiers = map[string]uint32{
	"ctrl":    ModControl,
	"control": ModControl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"win":     ModWin,
	"super":   ModWin,
}

var namedKeys = map[string]uint32{
	"enter":       0x0D,
	"return":      0x0D,
	"space":       0x20,
	"tab":         0x09,
	"esc":         0x1B,
	"escape":      0x1B,
	"backspace":   0x08,
	"insert":      0x2D,
	"delete":      0x2E,
	"home":        0x24,
	"end":         0x23,
	"pageup":      0x21,
	"pagedown":    0x22,
	"printscreen": 0x2C,
}

// Parse разбирает строку вида "ctrl+shift+l". Нужен хотя бы один модификатор и ровно одна клавиша.
func Parse(combo string) (Combo, error) {
	text := strings.ToLower(strings.TrimSpace(combo))
	if text == "" {
		return Combo{}, fmt.Errorf("hotkey: empty combination")
	}
	var c Combo
	keySet := false
	for _, part := range strings.Split(text, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Combo{}, fmt.Errorf("hotkey: malformed combination %q", combo)
		}
		if m, ok := modifiers[part]; ok {
			c.Modifiers |= m
			continue
		}
		vk, ok := keyCode(part)
		if !ok {
			return Combo{}, fmt.Errorf("hotkey: unknown key %q", part)
		}
		if keySet {
			return Combo{}, fmt.Errorf("hotkey: more than one key in %q", combo)
		}
		c.Key = vk
		keySet = true
	}
	if !keySet {
		return Combo{}, fmt.Errorf("hotkey: no key in %q", combo)
	}
	if c.Modifiers == 0 {
		return Combo{}, fmt.Errorf("hotkey: %q needs a modifier", combo)
	}
	c.Modifiers |= ModNoRepeat
	c.Text = text
	return c, nil
}

func keyCode(name string) (uint32, bool) {
	if vk, ok := namedKeys[name]; ok {
		return vk, true
	}
	if len(name) == 1 {
		ch := name[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return uint32(ch-'a') + 0x41, true
		case ch >= '0' && ch <= '9':
			return uint32(ch-'0') + 0x30, true
		}
	}
	// F1..F24
	if rest, found := strings.CutPrefix(name, "f"); found {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 && !strings.HasPrefix(rest, "0") {
			return 0x70 + uint32(n-1), true
		}
	}
	return 0, false
}
