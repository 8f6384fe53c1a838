package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// SoundNotifier проигрывает звук по завершении прогона.
type SoundNotifier struct {
	logger *zap.SugaredLogger
	path   string
	ply    Player
}

// NewSoundNotifier создаёт нотификатор. Пустой путь отключает звук.
// Относительный путь ищется сначала рядом с бинарём, затем от текущей директории.
func NewSoundNotifier(logger *zap.SugaredLogger, path string, ply Player) *SoundNotifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	path = strings.TrimSpace(path)
	if path != "" && !filepath.IsAbs(path) {
		path = resolve(path)
	}
	if ply == nil {
		ply = NewBeepPlayer(0)
	}
	return &SoundNotifier{logger: logger, path: path, ply: ply}
}

func resolve(rel string) string {
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), rel)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return filepath.FromSlash(rel)
}

// Enabled задан ли файл уведомления.
func (n *SoundNotifier) Enabled() bool { return n.path != "" }

// Play проигрывает звук. Ошибки логируются и возвращаются, прогон от них не зависит.
func (n *SoundNotifier) Play(ctx context.Context) error {
	if !n.Enabled() {
		return nil
	}
	if err := context.Cause(ctx); err != nil {
		return err
	}

	f, err := os.Open(n.path)
	if err != nil {
		n.logger.Warnw("Failed to open notification sound", "path", n.path, "error", err)
		return err
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(n.path), "."))
	if ext == "" {
		ext = "mp3"
	}
	if err := n.ply.Play(ext, f); err != nil {
		n.logger.Warnw("Failed to play notification sound", "path", n.path, "error", err)
		return err
	}
	return nil
}
