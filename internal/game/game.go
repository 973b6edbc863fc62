// Package game runs the frame loop: input, flashlight, illumination, block
// behaviour, movement, deaths, interpolation and timers, in that order.
package game

import (
	"fmt"
	"log"
	"time"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/level"
	"chosenoffset.com/lumen/internal/light"
	"chosenoffset.com/lumen/internal/render"
	"chosenoffset.com/lumen/internal/render/lighting"
)

// State is whether the world is running
type State int

const (
	StatePlaying State = iota
	StatePaused
)

// Options wires a Game to its collaborators
type Options struct {
	Renderer     render.Renderer
	Input        render.InputManager
	Levels       *level.Manager
	Dialogue     *dialogue.Manager
	Bursts       *fx.Bursts
	Audio        audio.Sink
	ScreenWidth  int
	ScreenHeight int
	TPS          int // ticks per second, 60 when unset

	// LightingShaderSrc is Kage source compiled on first Draw
	LightingShaderSrc []byte
}

// Game holds all game state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager

	Levels     *level.Manager
	Dialogue   *dialogue.Manager
	Bursts     *fx.Bursts
	Audio      audio.Sink
	Flashlight *Flashlight

	State    State
	Camera   Camera
	Messages []Message

	// Frame is the most recent flashlight cast
	Frame light.Frame

	dt time.Duration

	// shake counts down after the player dies
	shake     time.Duration
	deathSeen bool

	// Created on first Draw
	lightingShaderSrc []byte
	lighting          *lighting.Manager
}

// NewGame creates a game over opts.Levels. Call Start to load the first level.
func NewGame(opts Options) *Game {
	tps := opts.TPS
	if tps <= 0 {
		tps = 60
	}
	g := &Game{
		ScreenWidth:  opts.ScreenWidth,
		ScreenHeight: opts.ScreenHeight,
		Renderer:     opts.Renderer,
		InputMgr:     opts.Input,
		Levels:       opts.Levels,
		Dialogue:     opts.Dialogue,
		Bursts:       opts.Bursts,
		Audio:        opts.Audio,
		Flashlight:   NewFlashlight(),
		dt:           time.Second / time.Duration(tps),

		lightingShaderSrc: opts.LightingShaderSrc,
	}
	if g.Dialogue == nil {
		g.Dialogue = dialogue.NewManager()
	}
	if g.Bursts == nil {
		g.Bursts = fx.NewBursts(0.5)
	}
	if g.Audio == nil {
		g.Audio = audio.Discard{}
	}
	return g
}

// Start loads level index and starts the music
func (g *Game) Start(index int) error {
	if err := g.Levels.Load(index); err != nil {
		return fmt.Errorf("failed to start level %d: %w", index, err)
	}
	g.onLevelLoaded()
	g.Audio.PlayMusic(audio.MusicMain)
	return nil
}

// Update handles game logic updates.
func (g *Game) Update() error {
	return g.Step(g.readIntent())
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.ScreenWidth = outsideWidth
	g.ScreenHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// readIntent samples the keyboard and pointer for one frame
func (g *Game) readIntent() Intent {
	in := g.InputMgr
	var intent Intent

	switch {
	case in.IsKeyPressed(render.KeyW) || in.IsKeyPressed(render.KeyUp):
		intent.Move = grid.DirUp
	case in.IsKeyPressed(render.KeyS) || in.IsKeyPressed(render.KeyDown):
		intent.Move = grid.DirDown
	case in.IsKeyPressed(render.KeyA) || in.IsKeyPressed(render.KeyLeft):
		intent.Move = grid.DirLeft
	case in.IsKeyPressed(render.KeyD) || in.IsKeyPressed(render.KeyRight):
		intent.Move = grid.DirRight
	}

	intent.Interact = in.IsKeyJustPressed(render.KeySpace) || in.IsKeyJustPressed(render.KeyE)
	intent.Advance = in.IsKeyJustPressed(render.KeyEnter)
	intent.ToggleLight = in.IsKeyJustPressed(render.KeyL) || in.IsMouseButtonJustPressed(render.MouseButtonRight)
	intent.Pause = in.IsKeyJustPressed(render.KeyEscape) || in.IsKeyJustPressed(render.KeyP)
	intent.Restart = in.IsKeyJustPressed(render.KeyR)

	x, y := in.GetCursorPosition()
	intent.Pointer = grid.Point{X: float64(x) + g.Camera.X, Y: float64(y) + g.Camera.Y}
	intent.HasPointer = true
	return intent
}

// Step advances the world by one tick
func (g *Game) Step(in Intent) error {
	dt := g.dt
	if in.Pause {
		g.togglePause()
	}
	if g.State == StatePaused {
		return nil
	}

	root := g.Levels.CurrentLevelRoot()
	if root == nil {
		return nil
	}
	player := root.Player

	if in.Restart {
		g.Levels.RestartLevel()
	}

	g.Dialogue.Update(dt)
	if g.Dialogue.IsDialogueActive() {
		if in.Interact || in.Advance {
			g.Dialogue.Advance()
		}
		in.Interact = false
	}

	if in.ToggleLight && !player.Dead() && g.Flashlight.Toggle(player, g.Audio) && !g.Flashlight.Held() {
		g.Bursts.Spawn(fx.LightDrop, g.Flashlight.Origin(player))
	}

	origin := g.Flashlight.Origin(player)
	if in.HasPointer && !player.Dead() {
		g.Flashlight.PointAt(origin, in.Pointer)
	}

	g.Frame = root.Caster.Cast(origin, g.Flashlight.Aim())
	root.Blocks.ResolveIllumination()
	root.Blocks.Tick()

	if in.Move != grid.DirNone {
		player.Move(in.Move)
	}
	if in.Interact {
		player.Interact()
	}

	root.Blocks.CheckDeaths()
	player.CheckDeath()
	if player.Dead() && !g.deathSeen {
		g.deathSeen = true
		g.shake = shakeDuration
	}

	root.Blocks.Interpolate()
	player.Interpolate()
	root.Enemies.Interpolate()
	g.UpdateCamera()

	root.Timers.Advance(dt)
	g.shake = max(g.shake-dt, 0)
	g.Bursts.Update(dt.Seconds())
	g.updateMessages(dt.Seconds())

	if g.Levels.Pending() {
		if err := g.Levels.Apply(); err != nil {
			return fmt.Errorf("failed to load level: %w", err)
		}
		g.onLevelLoaded()
	}
	return nil
}

func (g *Game) togglePause() {
	g.Audio.PlayEffect(audio.EffectUIButtonPress)
	if g.State == StatePaused {
		g.State = StatePlaying
		return
	}
	g.State = StatePaused
}

// onLevelLoaded resets per-level presentation state
func (g *Game) onLevelLoaded() {
	g.Flashlight = NewFlashlight()
	g.Frame = light.Frame{}
	g.shake, g.deathSeen = 0, false
	g.Bursts.Clear()
	g.Dialogue.End()
	g.UpdateCamera()
	if root := g.Levels.CurrentLevelRoot(); root != nil {
		g.ShowMessage(root.Data.Name)
	}
}

// UpdateCamera centres small levels and follows the player in large ones.
func (g *Game) UpdateCamera() {
	root := g.Levels.CurrentLevelRoot()
	if root == nil {
		return
	}
	pos := root.Player.Pos()
	g.Camera.X = follow(pos.X, float64(root.Data.Width())*root.Index.CellSize, float64(g.ScreenWidth))
	g.Camera.Y = follow(pos.Y, float64(root.Data.Height())*root.Index.CellSize, float64(g.ScreenHeight))
}

func follow(center, extent, view float64) float64 {
	if extent <= view {
		return (extent - view) / 2
	}
	return min(max(center-view/2, 0), extent-view)
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	log.Printf("Message: %s", text)
}
