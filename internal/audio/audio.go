// Package audio defines the sound events the game fires and the sinks that
// play them. Playback is fire-and-forget: nothing in the game reads a result.
package audio

import "log"

// Effect identifies a one-shot sound
type Effect int

const (
	EffectWalk Effect = iota
	EffectPush
	EffectLightPickup
	EffectLightDrop
	EffectPlayerDeath
	EffectNextLevel
	EffectUIButtonPress
)

func (e Effect) String() string {
	switch e {
	case EffectWalk:
		return "walk"
	case EffectPush:
		return "push"
	case EffectLightPickup:
		return "light_pickup"
	case EffectLightDrop:
		return "light_drop"
	case EffectPlayerDeath:
		return "player_death"
	case EffectNextLevel:
		return "next_level"
	case EffectUIButtonPress:
		return "ui_button"
	default:
		return "unknown"
	}
}

// Music identifies a looping background track
type Music int

const (
	MusicMain Music = iota
	MusicMenu
)

// Sink plays sounds
type Sink interface {
	PlayEffect(Effect)
	PlayMusic(Music)
}

// Discard is a Sink that plays nothing
type Discard struct{}

func (Discard) PlayEffect(Effect) {}
func (Discard) PlayMusic(Music) {}

// LogSink prints every sound event, useful when running without a device
type LogSink struct{}

func (LogSink) PlayEffect(e Effect) {
	log.Printf("audio: effect %s", e)
}

func (LogSink) PlayMusic(m Music) {
	log.Printf("audio: music %d", m)
}
