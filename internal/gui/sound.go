package gui

import (
	eaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/san-kum/dotdrop/internal/audio"
)

// Sound streams impact clicks from an audio.Processor.
type Sound struct {
	proc   *audio.Processor
	player *eaudio.Player
}

func NewSound() (*Sound, error) {
	ctx := eaudio.CurrentContext()
	if ctx == nil {
		ctx = eaudio.NewContext(audio.SampleRate)
	}
	proc := audio.NewProcessor()
	player, err := ctx.NewPlayer(proc)
	if err != nil {
		return nil, err
	}
	player.Play()
	return &Sound{proc: proc, player: player}, nil
}

// Impact is called once per tick with the hardest impact speed of the tick.
func (s *Sound) Impact(speed float64) { s.proc.Trigger(speed) }

func (s *Sound) Close() error { return s.player.Close() }
