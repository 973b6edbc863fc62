package block

import (
	"log"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/timer"
)

// Variant is the behaviour a block kind adds to the shared entity state
type Variant interface {
	// ShineInteract fires when the block starts shining
	ShineInteract(r *Registry, e *Entity)
	// ShineDeinteract fires when the block stops shining
	ShineDeinteract(r *Registry, e *Entity)
	// Interact fires when an actor uses an immovable block
	Interact(r *Registry, e *Entity, by collision.Ref, dir grid.Direction)
}

// Ticker is implemented by variants that poll the world every frame
type Ticker interface {
	Tick(r *Registry, e *Entity)
}

// initializer adjusts a freshly spawned shadow entity
type initializer interface {
	init(r *Registry, e *Entity)
}

func newVariant(spec Spec) Variant {
	switch spec.Kind {
	case KindSwitch:
		return &Switch{Mode: spec.SwitchMode}
	case KindPressurePlate:
		return &PressurePlate{Mode: spec.SwitchMode}
	case KindAppearDoor:
		return &Door{Appears: true}
	case KindDisappearDoor:
		return &Door{}
	case KindNPC:
		return &NPC{Lines: spec.Dialogue}
	case KindNextLevel:
		return &NextLevelMarker{}
	default:
		return Wall{}
	}
}

func switchMode(v Variant) (SwitchMode, bool) {
	switch s := v.(type) {
	case *Switch:
		return s.Mode, true
	case *PressurePlate:
		return s.Mode, true
	}
	return ToggleShine, false
}

// Wall is purely geometric. Movable doors behave the same way.
type Wall struct{}

func (Wall) ShineInteract(*Registry, *Entity) {}
func (Wall) ShineDeinteract(*Registry, *Entity) {}
func (Wall) Interact(*Registry, *Entity, collision.Ref, grid.Direction) {}

// Switch fires its mode's effect at the linked block when light reaches it
// and the inverse effect when the light leaves. An invisible switch does
// nothing, so switches are normally given a repeat light form.
type Switch struct {
	Mode SwitchMode

	on       bool
	cooldown timer.Cooldown
}

// On reports whether the switch shows its lit sprite
func (s *Switch) On() bool { return s.on }

func (s *Switch) ShineInteract(r *Registry, e *Entity) {
	if !s.cooldown.Trigger(r.timers, r.cfg.SwitchCooldown) {
		return
	}
	s.on = true
	r.svc.FX.Trigger(fx.SwitchOn, e.pos)
	if !e.visible {
		return
	}
	r.dispatch(e, s.Mode, true)
}

// ShineDeinteract undoes only an activation that got past the cooldown
func (s *Switch) ShineDeinteract(r *Registry, e *Entity) {
	if !s.on {
		return
	}
	s.on = false
	r.svc.FX.Trigger(fx.SwitchOff, e.pos)
	if !e.visible {
		return
	}
	r.dispatch(e, s.Mode, false)
}

func (s *Switch) Interact(*Registry, *Entity, collision.Ref, grid.Direction) {}

// PressurePlate is a hidden switch driven by occupancy instead of light
type PressurePlate struct {
	Mode SwitchMode

	keyBlocks []ID
	on        bool
}

// On reports whether something is standing on the plate
func (p *PressurePlate) On() bool { return p.on }

func (p *PressurePlate) init(r *Registry, e *Entity) {
	e.visible = false
	e.fullyDisabled = true
}

func (p *PressurePlate) ShineInteract(*Registry, *Entity) {}
func (p *PressurePlate) ShineDeinteract(*Registry, *Entity) {}
func (p *PressurePlate) Interact(*Registry, *Entity, collision.Ref, grid.Direction) {}

func (p *PressurePlate) Tick(r *Registry, e *Entity) {
	pressed := p.pressed(r, e)
	switch {
	case pressed && !p.on:
		p.on = true
		r.dispatch(e, p.Mode, true)
	case !pressed && p.on:
		p.on = false
		r.dispatch(e, p.Mode, false)
	}
}

func (p *PressurePlate) pressed(r *Registry, e *Entity) bool {
	quarter := r.world.Index.CellSize / 4
	center := r.world.Index.CellCenter(e.cell)
	for _, b := range r.world.QueryArea(center, grid.Point{X: quarter, Y: quarter}, collision.LayerBlocks|collision.LayerActors) {
		if !b.Active() {
			continue
		}
		ref := b.Ref()
		if ref.Kind != collision.RefBlock {
			if len(p.keyBlocks) == 0 {
				return true
			}
			continue
		}
		other, ok := r.entityFor(b)
		if !ok || e.pairedWith(other.id) {
			continue
		}
		if len(p.keyBlocks) == 0 || p.isKey(other) {
			return true
		}
	}
	return false
}

func (p *PressurePlate) isKey(e *Entity) bool {
	for _, k := range p.keyBlocks {
		if k == e.id || (e.lightForm && k == e.parent) {
			return true
		}
	}
	return false
}

// Door is toggled only by ToggleAppear switches and never reacts to light.
// Pushed blocks may not enter its cell.
type Door struct {
	// Appears is true for doors that start hidden and show when activated
	Appears bool
}

func (d *Door) init(r *Registry, e *Entity) {
	e.noBlocks = true
	e.fullyDisabled = true
	e.visible = !d.Appears
}

// Activate applies the switch's "on" effect: an appear door shows, a
// disappear door hides
func (d *Door) Activate(r *Registry, e *Entity) {
	d.set(r, e, d.Appears)
}

// Deactivate applies the switch's "off" effect
func (d *Door) Deactivate(r *Registry, e *Entity) {
	d.set(r, e, !d.Appears)
}

func (d *Door) set(r *Registry, e *Entity, visible bool) {
	if e.visible == visible {
		return
	}
	e.visible = visible
	if visible {
		r.svc.FX.Trigger(fx.DoorAppear, e.pos)
	}
}

func (d *Door) ShineInteract(*Registry, *Entity) {}
func (d *Door) ShineDeinteract(*Registry, *Entity) {}
func (d *Door) Interact(*Registry, *Entity, collision.Ref, grid.Direction) {}

// NPC starts a conversation when used
type NPC struct {
	Lines []dialogue.Line
}

func (n *NPC) ShineInteract(*Registry, *Entity) {}
func (n *NPC) ShineDeinteract(*Registry, *Entity) {}

func (n *NPC) Interact(r *Registry, e *Entity, by collision.Ref, dir grid.Direction) {
	if len(n.Lines) == 0 {
		log.Printf("Warning: NPC %q has no dialogue", e.name)
		return
	}
	if r.svc.Dialogue.IsDialogueActive() {
		return
	}
	r.svc.Dialogue.StartDialogue(n.Lines)
}

// NextLevelMarker ends the level the first time the player stands on it
type NextLevelMarker struct {
	fired bool
}

func (m *NextLevelMarker) init(r *Registry, e *Entity) {
	e.visible = false
	e.fullyDisabled = true
}

func (m *NextLevelMarker) ShineInteract(*Registry, *Entity) {}
func (m *NextLevelMarker) ShineDeinteract(*Registry, *Entity) {}
func (m *NextLevelMarker) Interact(*Registry, *Entity, collision.Ref, grid.Direction) {}

func (m *NextLevelMarker) Tick(r *Registry, e *Entity) {
	if m.fired || !r.actorAt(e.cell, collision.RefPlayer) {
		return
	}
	m.fired = true
	r.svc.Audio.PlayEffect(audio.EffectNextLevel)
	r.svc.FX.Spawn(fx.NextLevel, e.pos)
	r.svc.Exit.GenerateNextLevel()
}
