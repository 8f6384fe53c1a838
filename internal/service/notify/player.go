package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player воспроизводит короткий звук по формату файла.
type Player interface {
	Play(format string, r io.ReadCloser) error
}

// BeepPlayer проигрывает mp3 и wav через системный вывод.
type BeepPlayer struct {
	volumeDB float64

	mu         sync.Mutex
	sampleRate beep.SampleRate
}

// NewBeepPlayer создаёт плеер с громкостью в dB (0: без изменений, отрицательные: тише).
func NewBeepPlayer(db float64) *BeepPlayer { return &BeepPlayer{volumeDB: db} }

func (p *BeepPlayer) Play(format string, r io.ReadCloser) error {
	var (
		streamer beep.StreamSeekCloser
		f        beep.Format
		err      error
	)
	switch format {
	case "wav", "WAV":
		streamer, f, err = wav.Decode(r)
	case "mp3", "MP3":
		streamer, f, err = mp3.Decode(r)
	default:
		return fmt.Errorf("unsupported sound format %q; use mp3 or wav", format)
	}
	if err != nil {
		return err
	}
	defer streamer.Close()

	// speaker инициализируется один раз на частоту
	p.mu.Lock()
	if p.sampleRate != f.SampleRate {
		if err := speaker.Init(f.SampleRate, f.SampleRate.N(time.Second/10)); err != nil {
			p.mu.Unlock()
			return err
		}
		p.sampleRate = f.SampleRate
	}
	p.mu.Unlock()

	vol := &effects.Volume{Streamer: streamer, Base: 2, Volume: p.volumeDB}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	<-done
	return nil
}
