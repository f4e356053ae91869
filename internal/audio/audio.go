// Package audio synthesizes impact sounds for the dots window. Processor
// is an endless 16-bit little-endian stereo stream suitable for an
// ebiten audio player.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	SampleRate = 44100

	// ClickThreshold is the slowest impact speed that makes a sound.
	ClickThreshold = 300.0

	voiceSeconds = 0.25
	cooldown     = SampleRate / 15
	maxVoices    = 8
)

type voice struct {
	freq float64
	gain float64
	age  int
}

type Processor struct {
	mu     sync.Mutex
	voices []voice
	wait   int

	// Smoothing
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int

	Cutoff float64
	Volume float64
}

func NewProcessor() *Processor {
	delayLen := int(float64(SampleRate) * 0.18)

	return &Processor{
		delayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		Cutoff:    2400,
		Volume:    0.5,
	}
}

// Trigger starts a click for an impact at speed. Slow impacts and impacts
// arriving within the cooldown of the last click are ignored. Harder hits
// are louder and lower pitched.
func (a *Processor) Trigger(speed float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if speed < ClickThreshold || a.wait > 0 {
		return false
	}
	a.wait = cooldown
	strength := math.Min(1, speed/3000)
	v := voice{freq: 880 - 440*strength, gain: 0.3 + 0.7*strength}
	if len(a.voices) == maxVoices {
		a.voices = a.voices[1:]
	}
	a.voices = append(a.voices, v)
	return true
}

// Active reports how many clicks are still sounding.
func (a *Processor) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

// Triangle Wave: Smooth, flute-like, no harsh buzz
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Read fills p with whole stereo frames and never returns an error.
func (a *Processor) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dt := 1.0 / float64(SampleRate)
	frames := len(p) / 4
	life := int(voiceSeconds * SampleRate)

	for i := 0; i < frames; i++ {
		dry := 0.0
		live := a.voices[:0]
		for _, v := range a.voices {
			t := float64(v.age) * dt
			env := math.Exp(-t * 18)
			dry += triangle(t*v.freq) * env * v.gain
			v.age++
			if v.age < life {
				live = append(live, v)
			}
		}
		a.voices = live
		if a.wait > 0 {
			a.wait--
		}

		a.filterState[0] = lpf(dry, a.Cutoff, dt, a.filterState[0])
		a.filterState[1] = lpf(dry, a.Cutoff*0.8, dt, a.filterState[1])

		delayL := a.delayLine[0][a.delayHead]
		delayR := a.delayLine[1][a.delayHead]

		// Ping pong
		mixL := a.filterState[0] + delayR*0.25
		mixR := a.filterState[1] + delayL*0.25

		a.delayLine[0][a.delayHead] = mixL * 0.5
		a.delayLine[1][a.delayHead] = mixR * 0.5
		a.delayHead = (a.delayHead + 1) % len(a.delayLine[0])

		binary.LittleEndian.PutUint16(p[i*4:], uint16(toInt16(mixL*a.Volume)))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(toInt16(mixR*a.Volume)))
	}
	return frames * 4, nil
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(v * math.MaxInt16)
}
