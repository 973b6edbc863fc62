package block

import (
	"log"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/fx"
)

// ShineBlock swaps a block to its light form: the shadow entity is hidden
// and the light form, if any, is shown. Fully disabled blocks, light forms
// and repeat blocks are left alone.
func (r *Registry) ShineBlock(id ID) {
	e, ok := r.Get(id)
	if !ok || e.fullyDisabled || e.lightForm || e.lightFormKind == KindRepeat {
		return
	}
	e.visible = false
	if lf, ok := r.Get(e.lightFormID); ok {
		lf.visible = true
	}
}

// DeshineBlock reverses ShineBlock
func (r *Registry) DeshineBlock(id ID) {
	e, ok := r.Get(id)
	if !ok || e.fullyDisabled || e.lightForm || e.lightFormKind == KindRepeat {
		return
	}
	e.visible = true
	if lf, ok := r.Get(e.lightFormID); ok {
		lf.visible = false
	}
}

// FullyDisable hides both forms and freezes the block against shining
func (r *Registry) FullyDisable(id ID) {
	e, ok := r.Get(id)
	if !ok {
		return
	}
	e.visible = false
	if lf, ok := r.Get(e.lightFormID); ok {
		lf.visible = false
	}
	e.fullyDisabled = true
}

// FullyEnable shows the shadow form and lets the block shine again
func (r *Registry) FullyEnable(id ID) {
	e, ok := r.Get(id)
	if !ok {
		return
	}
	e.visible = true
	e.fullyDisabled = false
	e.shining = false
}

// Illuminate records that a ray reached the block this frame.
// Light forms are never counted.
func (r *Registry) Illuminate(id ID) {
	e, ok := r.Get(id)
	if !ok || e.lightForm {
		return
	}
	e.litThisFrame = true
}

// ResolveIllumination turns this frame's ray hits into shine transitions.
// It must run once per frame, after the light has been cast and before any
// movement reads visibility.
func (r *Registry) ResolveIllumination() {
	for _, id := range append([]ID(nil), r.order...) {
		e, ok := r.Get(id)
		if !ok {
			continue
		}
		switch {
		case e.litThisFrame && !e.shining && !e.lightForm && !e.fullyDisabled:
			e.shining = true
			r.ShineBlock(e.id)
			e.variant.ShineInteract(r, e)
		case !e.litThisFrame && e.shining:
			e.shining = false
			r.DeshineBlock(e.id)
			e.variant.ShineDeinteract(r, e)
		}
		e.litThisFrame = false
	}
}

// ShineInteract fires a block's shine effect directly
func (r *Registry) ShineInteract(id ID) {
	if e, ok := r.Get(id); ok {
		e.variant.ShineInteract(r, e)
	}
}

// ShineDeinteract fires a block's un-shine effect directly
func (r *Registry) ShineDeinteract(id ID) {
	if e, ok := r.Get(id); ok {
		e.variant.ShineDeinteract(r, e)
	}
}

// Tick runs the per-frame behaviour of plates and exit markers
func (r *Registry) Tick() {
	for _, id := range append([]ID(nil), r.order...) {
		e, ok := r.Get(id)
		if !ok {
			continue
		}
		if t, ok := e.variant.(Ticker); ok {
			t.Tick(r, e)
		}
	}
}

// CanMove reports whether MoveBlock would succeed
func (r *Registry) CanMove(id ID, dir grid.Direction) bool {
	e, ok := r.Get(id)
	if !ok || e.lightForm || !e.movable || !dir.Valid() {
		return false
	}
	dest := e.cell.Add(dir.Delta())
	if _, blocked := r.VisibleBlockAt(dest, e.id); blocked {
		return false
	}
	return !r.Solid(dest) && !r.EnemyAt(dest) && !r.noBlocksAt(dest) && !r.Reserved(dest)
}

// MoveBlock pushes a block one cell and returns its cell afterwards, which
// is the current cell when the push is rejected.
func (r *Registry) MoveBlock(id ID, dir grid.Direction) grid.Cell {
	e, ok := r.Get(id)
	if !ok {
		return grid.Cell{}
	}
	if !dir.Valid() {
		log.Printf("Warning: invalid direction %s for moving block %q", dir, e.name)
		return e.cell
	}
	if !r.CanMove(id, dir) {
		return e.cell
	}

	from := e.cell
	r.moveSeq++
	r.placeAt(e, from.Add(dir.Delta()))
	e.moveSeq = r.moveSeq
	r.Reserve(from)

	r.svc.Audio.PlayEffect(audio.EffectPush)
	r.svc.FX.Spawn(fx.Push, r.world.Index.CellCenter(from))
	return e.cell
}

// placeAt sets the authoritative cell of e and its light form
func (r *Registry) placeAt(e *Entity, c grid.Cell) {
	e.cell = c
	e.target = r.world.Index.CellCenter(c)
	if lf, ok := r.Get(e.lightFormID); ok {
		lf.cell = c
		lf.target = e.target
	}
}

// CheckDeaths crushes every movable (or movement-linked) block sharing its
// cell with another visible block. The most recent mover is checked first
// and removed at once, so of two blocks forced together only the mover dies.
// A block never dies to a block that moved onto it later, so a mover that
// entered a shined-away block's cell survives until that block reappears.
func (r *Registry) CheckDeaths() []ID {
	var candidates []*Entity
	for _, e := range r.Entities() {
		if e.movable || e.movementLinked {
			candidates = append(candidates, e)
		}
	}

	var crushed []ID
	for _, e := range sortedByLastMove(candidates) {
		if e.dead || !r.crushedAt(e) {
			continue
		}
		crushed = append(crushed, e.id)
		r.svc.FX.Spawn(fx.Death, e.pos)
		r.Destroy(e.id)
	}
	return crushed
}

// crushedAt reports whether a visible block that e cannot outlast shares
// its cell
func (r *Registry) crushedAt(e *Entity) bool {
	for _, other := range r.BlocksAt(e.cell) {
		if !other.visible || e.pairedWith(other.id) {
			continue
		}
		if r.lastMove(other) > r.lastMove(e) {
			continue
		}
		return true
	}
	return false
}

// lastMove is the move sequence of e, or of its parent for a light form
func (r *Registry) lastMove(e *Entity) uint64 {
	if e.lightForm {
		if p, ok := r.Get(e.parent); ok {
			return p.moveSeq
		}
	}
	return e.moveSeq
}

// Interact handles a player or enemy using a block from direction dir.
// Movable blocks are pushed, and so is the parent of a movable light form;
// anything else runs its variant's interaction.
func (r *Registry) Interact(id ID, by collision.Ref, dir grid.Direction) {
	e, ok := r.Get(id)
	if !ok {
		return
	}
	if e.movable {
		target := e.id
		if e.lightForm {
			target = e.parent
		}
		r.MoveBlock(target, dir)
		return
	}
	e.variant.Interact(r, e, by, dir)
}

// Interpolate eases every block towards its target; light forms sit on
// their parent
func (r *Registry) Interpolate() {
	for _, e := range r.Entities() {
		if e.lightForm {
			if p, ok := r.Get(e.parent); ok {
				e.cell = p.cell
				e.pos = p.pos
				e.target = p.target
			} else {
				log.Printf("Warning: light form %q has no parent to follow", e.name)
			}
			continue
		}
		if e.pos == e.target {
			continue
		}
		e.pos = e.pos.Lerp(e.target, r.cfg.Lerp)
		if grid.Distance(e.pos, e.target) < 1e-3 {
			e.pos = e.target
		}
	}
}
