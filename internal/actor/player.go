package actor

import (
	"log"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/timer"
)

// Player is the flashlight carrier
type Player struct {
	Mover

	env      *Env
	cfg      Config
	cooldown timer.Cooldown
	dead     bool

	// OnStep runs after every accepted step; the game advances the enemies here
	OnStep func(dir grid.Direction)
}

// NewPlayer spawns the player at the cell containing spawn and registers
// its body with the world
func NewPlayer(env *Env, cfg Config, spawn grid.Point) *Player {
	p := &Player{
		Mover: newMover(env.World.Index, spawn, grid.DirRight, cfg.PlayerLerp),
		env:   env,
		cfg:   cfg,
	}
	env.World.Add(p)
	return p
}

func (p *Player) Ref() collision.Ref { return collision.Ref{Kind: collision.RefPlayer, ID: 1} }

// Active reports whether the player is alive
func (p *Player) Active() bool { return !p.dead }

// Dead reports whether the kill sequence has started
func (p *Player) Dead() bool { return p.dead }

// OnCooldown reports whether the last step is still debouncing input
func (p *Player) OnCooldown() bool { return p.cooldown.Active() }

// Move tries to step one cell in dir and reports whether the player moved.
// The move cooldown starts even when the step is blocked.
func (p *Player) Move(dir grid.Direction) bool {
	if p.dead || p.env.inDialogue() || !dir.Valid() {
		return false
	}
	p.facing = dir
	if !p.cooldown.Trigger(p.env.Timers, p.cfg.MoveCooldown) {
		return false
	}

	// Finish the previous step visually before starting the next
	p.pos = p.target

	dest := p.cell.Add(dir.Delta())
	if p.env.occupied(dest) {
		return false
	}
	p.place(dest)
	p.env.playEffect(audio.EffectWalk)
	if p.OnStep != nil {
		p.OnStep(dir)
	}
	return true
}

// Interact uses every visible block in the facing cell
func (p *Player) Interact() {
	if p.dead || p.env.inDialogue() {
		return
	}
	ahead := p.cell.Add(p.facing.Delta())
	for _, e := range p.env.Blocks.BlocksAt(ahead) {
		if e.Visible() {
			p.env.Blocks.Interact(e.ID(), p.Ref(), p.facing)
		}
	}
}

// CheckDeath kills the player if a visible block or an enemy shares its cell
func (p *Player) CheckDeath() {
	if p.dead {
		return
	}
	if e, ok := p.env.Blocks.VisibleBlockAt(p.cell, 0); ok {
		log.Printf("Player died to %q", e.Name())
		p.Kill()
		return
	}
	if p.env.Blocks.EnemyAt(p.cell) {
		log.Println("Player died to an enemy")
		p.Kill()
	}
}

// Kill starts the death sequence: sound, effects, and a level restart after
// the restart delay. Killing a dead player does nothing.
func (p *Player) Kill() {
	if p.dead {
		return
	}
	p.dead = true
	p.env.playEffect(audio.EffectPlayerDeath)
	p.env.spawnFX(fx.Death, p.pos)
	p.env.triggerFX(fx.Death, p.pos)
	p.env.Timers.After(p.cfg.RestartDelay, func() {
		if p.env.Scene != nil {
			p.env.Scene.RestartLevel()
		}
	})
}
