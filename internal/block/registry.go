// Package block implements the light/shadow block state machine: blocks and
// their light forms, illumination edge detection, pushing, crushing and the
// switch/plate/door effects that link blocks together.
package block

import (
	"fmt"
	"log"
	"sort"
	"time"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/timer"
)

// Config holds block timing and motion tuning
type Config struct {
	SwitchCooldown  time.Duration // minimum time between two switch activations
	ReserveCooldown time.Duration // how long a vacated cell stays closed to other pushes
	Lerp            float64       // fraction of the remaining distance covered per frame
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		SwitchCooldown:  500 * time.Millisecond,
		ReserveCooldown: 100 * time.Millisecond,
		Lerp:            0.1,
	}
}

// LevelExit is the part of the level lifecycle a block can trigger
type LevelExit interface {
	GenerateNextLevel()
}

// Terrain reports the level cells nothing can enter
type Terrain interface {
	Solid(c grid.Cell) bool
}

// Services are the collaborators blocks fire effects into.
// Nil members are replaced with no-op implementations.
type Services struct {
	Audio    audio.Sink
	Dialogue dialogue.Service
	Exit     LevelExit
	FX       fx.Sink
	Terrain  Terrain
}

type noExit struct{}

func (noExit) GenerateNextLevel() {}

type openTerrain struct{}

func (openTerrain) Solid(grid.Cell) bool { return false }

type noDialogue struct{}

func (noDialogue) StartDialogue([]dialogue.Line) {}
func (noDialogue) IsDialogueActive() bool { return false }

// Spec describes a block to spawn
type Spec struct {
	Name       string
	Kind       Kind
	Pos        grid.Point // snapped to the nearest cell centre
	LightForm  Kind
	Movable    bool
	Hidden     bool
	SwitchMode SwitchMode
	Dialogue   []dialogue.Line
}

// Registry owns every block entity of a level
type Registry struct {
	cfg    Config
	world  *collision.World
	timers *timer.Scheduler
	svc    Services

	entities map[ID]*Entity
	order    []ID // ascending, the fixed per-frame processing order
	nextID   ID
	moveSeq  uint64

	reserved map[grid.Cell]int
}

// NewRegistry creates an empty registry that registers its blocks with world
func NewRegistry(world *collision.World, timers *timer.Scheduler, svc Services, cfg Config) *Registry {
	if svc.Audio == nil {
		svc.Audio = audio.Discard{}
	}
	if svc.Dialogue == nil {
		svc.Dialogue = noDialogue{}
	}
	if svc.Exit == nil {
		svc.Exit = noExit{}
	}
	if svc.FX == nil {
		svc.FX = fx.Discard{}
	}
	if svc.Terrain == nil {
		svc.Terrain = openTerrain{}
	}
	return &Registry{
		cfg:      cfg,
		world:    world,
		timers:   timers,
		svc:      svc,
		entities: make(map[ID]*Entity),
		reserved: make(map[grid.Cell]int),
	}
}

// Spawn creates a block and, where its light-form kind calls for one, its
// hidden light form. It returns the shadow entity's ID.
func (r *Registry) Spawn(spec Spec) (ID, error) {
	if spec.Kind == KindEmptySpace || spec.Kind == KindRepeat {
		return NoID, fmt.Errorf("block %q: %s is only valid as a light form", spec.Name, spec.Kind)
	}

	e := r.newEntity(spec.Kind, spec.Name, r.world.Index.WorldToCell(spec.Pos))
	e.movable = spec.Movable
	e.lightFormKind = spec.LightForm
	e.visible = !spec.Hidden
	e.variant = newVariant(spec)
	r.add(e)

	if iv, ok := e.variant.(initializer); ok {
		iv.init(r, e)
	}
	r.createLightForm(e, spec)
	return e.id, nil
}

func (r *Registry) newEntity(kind Kind, name string, cell grid.Cell) *Entity {
	r.nextID++
	center := r.world.Index.CellCenter(cell)
	return &Entity{
		id:     r.nextID,
		kind:   kind,
		name:   name,
		index:  r.world.Index,
		cell:   cell,
		pos:    center,
		target: center,
	}
}

func (r *Registry) add(e *Entity) {
	r.entities[e.id] = e
	r.order = append(r.order, e.id)
	r.world.Add(e)
}

// lightTemplates are the kinds a block may turn into when shined
var lightTemplates = map[Kind]bool{
	KindWall:        true,
	KindSwitch:      true,
	KindMovableDoor: true,
}

func (r *Registry) createLightForm(parent *Entity, spec Spec) {
	if parent.lightFormKind == KindEmptySpace || parent.lightFormKind == KindRepeat {
		return
	}
	if !lightTemplates[parent.lightFormKind] {
		log.Printf("Error: block %q: light form %s is not defined, spawning without one", parent.name, parent.lightFormKind)
		return
	}

	lf := r.newEntity(parent.lightFormKind, parent.name+"_LightForm", parent.cell)
	lf.lightForm = true
	lf.parent = parent.id
	lf.lightFormKind = KindRepeat
	lf.movable = parent.movable
	lf.visible = false

	lfSpec := spec
	lfSpec.Kind = parent.lightFormKind
	lf.variant = newVariant(lfSpec)

	parent.lightFormID = lf.id
	r.add(lf)
}

// Link points a switch or pressure plate at target. Linking a
// ToggleMovement source also makes the target crushable.
func (r *Registry) Link(source, target ID) error {
	src, ok := r.Get(source)
	if !ok {
		return fmt.Errorf("link source %d does not exist", source)
	}
	dst, ok := r.Get(target)
	if !ok {
		return fmt.Errorf("link target %d does not exist", target)
	}
	src.linked = dst.id
	if mode, ok := switchMode(src.variant); ok && mode == ToggleMovement {
		dst.movementLinked = true
	}
	return nil
}

// SetKeyBlocks restricts a pressure plate to the given blocks
func (r *Registry) SetKeyBlocks(plate ID, keys []ID) error {
	e, ok := r.Get(plate)
	if !ok {
		return fmt.Errorf("pressure plate %d does not exist", plate)
	}
	pp, ok := e.variant.(*PressurePlate)
	if !ok {
		return fmt.Errorf("block %q is a %s, not a pressure plate", e.name, e.kind)
	}
	pp.keyBlocks = append([]ID(nil), keys...)
	return nil
}

// Get returns a live entity
func (r *Registry) Get(id ID) (*Entity, bool) {
	e, ok := r.entities[id]
	if !ok || e.dead {
		return nil, false
	}
	return e, true
}

// Entities returns every live entity in ID order
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of live entities, light forms included
func (r *Registry) Len() int {
	return len(r.entities)
}

// Destroy removes an entity together with its light-form partner
func (r *Registry) Destroy(id ID) {
	e, ok := r.Get(id)
	if !ok {
		return
	}
	if e.lightForm {
		r.remove(e.parent)
	} else {
		r.remove(e.lightFormID)
	}
	r.remove(e.id)
}

func (r *Registry) remove(id ID) {
	e, ok := r.entities[id]
	if !ok {
		return
	}
	e.dead = true
	e.visible = false
	r.world.Remove(e)
	delete(r.entities, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Reserve closes c to pushes for the reserve cooldown
func (r *Registry) Reserve(c grid.Cell) {
	r.reserved[c]++
	r.timers.After(r.cfg.ReserveCooldown, func() {
		if r.reserved[c] <= 1 {
			delete(r.reserved, c)
			return
		}
		r.reserved[c]--
	})
}

// Reserved reports whether c was vacated too recently to be entered
func (r *Registry) Reserved(c grid.Cell) bool {
	return r.reserved[c] > 0
}

// BlocksAt returns the live entities registered at c, visible or not
func (r *Registry) BlocksAt(c grid.Cell) []*Entity {
	var out []*Entity
	for _, b := range r.world.QueryCell(c, collision.LayerBlocks) {
		if e, ok := r.entityFor(b); ok {
			out = append(out, e)
		}
	}
	return out
}

// VisibleBlockAt returns a visible block at c that is not paired with except
func (r *Registry) VisibleBlockAt(c grid.Cell, except ID) (*Entity, bool) {
	var skip *Entity
	if except != NoID {
		skip = r.entities[except]
	}
	for _, e := range r.BlocksAt(c) {
		if !e.visible {
			continue
		}
		if skip != nil && skip.pairedWith(e.id) {
			continue
		}
		return e, true
	}
	return nil, false
}

// Solid reports whether c is level terrain
func (r *Registry) Solid(c grid.Cell) bool {
	return r.svc.Terrain.Solid(c)
}

func (r *Registry) entityFor(b collision.Body) (*Entity, bool) {
	ref := b.Ref()
	if ref.Kind != collision.RefBlock {
		return nil, false
	}
	e, ok := r.Get(ID(ref.ID))
	if !ok {
		log.Printf("Warning: body on the block layer has no block entity (id %d)", ref.ID)
		return nil, false
	}
	return e, true
}

// actorAt reports whether an active actor body of kind is on c
func (r *Registry) actorAt(c grid.Cell, kind collision.RefKind) bool {
	for _, b := range r.world.QueryCell(c, collision.LayerActors) {
		if b.Active() && b.Ref().Kind == kind {
			return true
		}
	}
	return false
}

// EnemyAt reports whether a live enemy stands on c
func (r *Registry) EnemyAt(c grid.Cell) bool {
	return r.actorAt(c, collision.RefEnemy)
}

// noBlocksAt reports whether a door forbids pushed blocks on c
func (r *Registry) noBlocksAt(c grid.Cell) bool {
	for _, e := range r.BlocksAt(c) {
		if e.noBlocks {
			return true
		}
	}
	return false
}

// sortedByLastMove returns candidates, most recent mover first
func sortedByLastMove(candidates []*Entity) []*Entity {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].moveSeq != candidates[j].moveSeq {
			return candidates[i].moveSeq > candidates[j].moveSeq
		}
		return candidates[i].id > candidates[j].id
	})
	return candidates
}
