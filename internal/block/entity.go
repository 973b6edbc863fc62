package block

import (
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
)

// Entity is one block in one world form. A shadow block and its light form
// are two entities that refer to each other by ID.
type Entity struct {
	id   ID
	kind Kind
	name string

	// Position: cell is authoritative, pos eases towards target for drawing
	index  *grid.Index
	cell   grid.Cell
	pos    grid.Point
	target grid.Point

	visible bool
	movable bool

	// Light-form pairing
	lightForm     bool
	parent        ID
	lightFormID   ID
	lightFormKind Kind

	// Switch / plate target, not owned
	linked ID

	// Illumination edge detector
	litThisFrame bool
	shining      bool

	fullyDisabled  bool
	movementLinked bool // target of a ToggleMovement switch, can be crushed
	noBlocks       bool // pushed blocks may not enter this cell
	dead           bool
	moveSeq        uint64

	variant Variant
}

func (e *Entity) ID() ID { return e.id }
func (e *Entity) Kind() Kind { return e.kind }
func (e *Entity) Name() string { return e.name }
func (e *Entity) Cell() grid.Cell { return e.cell }
func (e *Entity) Pos() grid.Point { return e.pos }
func (e *Entity) Visible() bool { return e.visible }
func (e *Entity) Movable() bool { return e.movable }
func (e *Entity) IsLightForm() bool { return e.lightForm }
func (e *Entity) Parent() ID { return e.parent }
func (e *Entity) LightForm() ID { return e.lightFormID }
func (e *Entity) LightFormKind() Kind { return e.lightFormKind }
func (e *Entity) Linked() ID { return e.linked }
func (e *Entity) Shining() bool { return e.shining }
func (e *Entity) FullyDisabled() bool { return e.fullyDisabled }
func (e *Entity) MovementLinked() bool { return e.movementLinked }
func (e *Entity) Dead() bool { return e.dead }
func (e *Entity) Variant() Variant { return e.variant }

// pairedWith reports whether other is e itself or e's light-form partner
func (e *Entity) pairedWith(other ID) bool {
	return other == e.id || (other != NoID && (other == e.parent || other == e.lightFormID))
}

// collision.Body

func (e *Entity) Ref() collision.Ref {
	return collision.Ref{Kind: collision.RefBlock, ID: int(e.id)}
}

func (e *Entity) Layer() collision.Layer { return collision.LayerBlocks }
func (e *Entity) Tag() collision.Tag { return collision.TagNone }

// Active reports whether the block is solid in the current world form
func (e *Entity) Active() bool {
	return e.visible && !e.dead
}

// Bounds is the full cell the block occupies
func (e *Entity) Bounds() collision.Rect {
	half := e.index.CellSize / 2
	return collision.Box(e.index.CellCenter(e.cell), grid.Point{X: half, Y: half})
}

func (e *Entity) Edges() []collision.Edge {
	return collision.BoxEdges(e.Bounds())
}
