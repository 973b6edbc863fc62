// Package ebiten plays the game's sound events through an Ebitengine audio
// context.
package ebiten

import (
	"bytes"
	"encoding/binary"
	"log"
	"math"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"chosenoffset.com/lumen/internal/audio"
)

const sampleRate = 44100

// tone describes a short synthesized sound
type tone struct {
	freq     float64 // start frequency in Hz
	slide    float64 // end frequency in Hz, 0 keeps freq
	duration float64 // seconds
	volume   float64
}

var effectTones = map[audio.Effect]tone{
	audio.EffectWalk:          {freq: 220, duration: 0.04, volume: 0.15},
	audio.EffectPush:          {freq: 140, slide: 90, duration: 0.12, volume: 0.3},
	audio.EffectLightPickup:   {freq: 520, slide: 880, duration: 0.15, volume: 0.25},
	audio.EffectLightDrop:     {freq: 880, slide: 520, duration: 0.15, volume: 0.25},
	audio.EffectPlayerDeath:   {freq: 330, slide: 55, duration: 0.6, volume: 0.35},
	audio.EffectNextLevel:     {freq: 440, slide: 1320, duration: 0.5, volume: 0.3},
	audio.EffectUIButtonPress: {freq: 660, duration: 0.05, volume: 0.2},
}

var musicTones = map[audio.Music]tone{
	audio.MusicMain: {freq: 55, duration: 4, volume: 0.05},
	audio.MusicMenu: {freq: 82.5, duration: 4, volume: 0.05},
}

// ToneSink plays synthesized tones through an Ebitengine audio context.
// The PCM for every effect is rendered once up front.
type ToneSink struct {
	ctx     *ebaudio.Context
	effects map[audio.Effect][]byte
	music   *ebaudio.Player
	playing audio.Music
}

// NewToneSink creates a sink on the process-wide audio context
func NewToneSink() *ToneSink {
	ctx := ebaudio.CurrentContext()
	if ctx == nil {
		ctx = ebaudio.NewContext(sampleRate)
	}
	s := &ToneSink{
		ctx:     ctx,
		effects: make(map[audio.Effect][]byte, len(effectTones)),
		playing: -1,
	}
	for e, t := range effectTones {
		s.effects[e] = synthesize(t)
	}
	return s
}

func (s *ToneSink) PlayEffect(e audio.Effect) {
	pcm, ok := s.effects[e]
	if !ok {
		log.Printf("Warning: no tone for effect %s", e)
		return
	}
	s.ctx.NewPlayerFromBytes(pcm).Play()
}

func (s *ToneSink) PlayMusic(m audio.Music) {
	if s.playing == m && s.music != nil && s.music.IsPlaying() {
		return
	}
	t, ok := musicTones[m]
	if !ok {
		log.Printf("Warning: no tone for music %d", m)
		return
	}
	if s.music != nil {
		if err := s.music.Close(); err != nil {
			log.Printf("Warning: closing music player: %v", err)
		}
	}

	pcm := synthesize(t)
	loop := ebaudio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
	player, err := s.ctx.NewPlayer(loop)
	if err != nil {
		log.Printf("Warning: creating music player: %v", err)
		return
	}
	player.Play()
	s.music = player
	s.playing = m
}

// synthesize renders t as 16-bit little-endian stereo PCM with a linear fade out
func synthesize(t tone) []byte {
	n := int(t.duration * sampleRate)
	buf := make([]byte, n*4)

	end := t.slide
	if end == 0 {
		end = t.freq
	}
	phase := 0.0
	for i := 0; i < n; i++ {
		progress := float64(i) / float64(n)
		freq := t.freq + (end-t.freq)*progress
		phase += 2 * math.Pi * freq / sampleRate

		v := math.Sin(phase) * t.volume * (1 - progress)
		sample := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], sample)
		binary.LittleEndian.PutUint16(buf[i*4+2:], sample)
	}
	return buf
}
