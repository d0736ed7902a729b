package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// oscillator generates a fixed-length raw wave.
type oscillator struct {
	freq     float64
	phase    float64
	position int
	length   int
	wave     WaveType
	rate     beep.SampleRate
}

func NewOscillator(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, length: rate.N(d), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveNoise:
			v = rand.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// fade applies a linear attack and release to a stream of known length.
type fade struct {
	s        beep.Streamer
	position int
	length   int
	attack   int
	release  int
}

func newFade(s beep.Streamer, length, attack, release int) beep.Streamer {
	return &fade{s: s, length: length, attack: attack, release: release}
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if f.attack > 0 && f.position < f.attack {
			vol = float64(f.position) / float64(f.attack)
		}
		if left := f.length - f.position; f.release > 0 && left < f.release {
			vol = max(0, float64(left)/float64(f.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.s.Err() }

// Tone is a shaped note: 5 ms attack, release over the last third.
func Tone(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate, vol float64) beep.Streamer {
	length := rate.N(d)
	shaped := newFade(NewOscillator(freq, d, wave, rate), length, rate.N(5*time.Millisecond), length/3)
	return &effects.Volume{Streamer: shaped, Base: 2, Volume: math.Log2(vol)}
}

// semitone returns the frequency n semitones above base.
func semitone(base float64, n int) float64 {
	return base * math.Pow(2, float64(n)/12)
}

const (
	noteC5 = 523.25
	noteG4 = 392.00
	noteC4 = 261.63

	maxComboNotes = 8
)

// SliceSound is the blip of a fruit hit.
func SliceSound(rate beep.SampleRate) beep.Streamer {
	return Tone(880, 60*time.Millisecond, WaveSine, rate, 0.5)
}

// BombSound is a short noise burst.
func BombSound(rate beep.SampleRate) beep.Streamer {
	return Tone(0, 250*time.Millisecond, WaveNoise, rate, 0.6)
}

// ComboSound rises one whole step per sliced fruit, up to maxComboNotes.
func ComboSound(rate beep.SampleRate, count int) beep.Streamer {
	n := min(max(count, 1), maxComboNotes)
	notes := make([]beep.Streamer, 0, n)
	for i := range n {
		notes = append(notes, Tone(semitone(noteC5, 2*i), 50*time.Millisecond, WaveSquare, rate, 0.3))
	}
	return beep.Seq(notes...)
}

// GameOverSound is a falling three-note phrase.
func GameOverSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		Tone(noteC5, 150*time.Millisecond, WaveSine, rate, 0.5),
		Tone(noteG4, 150*time.Millisecond, WaveSine, rate, 0.5),
		Tone(noteC4, 300*time.Millisecond, WaveSine, rate, 0.5),
	)
}
