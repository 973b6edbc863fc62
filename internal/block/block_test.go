package block

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/timer"
)

type recordAudio struct {
	effects []audio.Effect
}

func (a *recordAudio) PlayEffect(e audio.Effect) { a.effects = append(a.effects, e) }
func (a *recordAudio) PlayMusic(audio.Music) {}

type countExit struct {
	calls int
}

func (c *countExit) GenerateNextLevel() { c.calls++ }

// testActor stands in for the player or an enemy
type testActor struct {
	kind  collision.RefKind
	cell  grid.Cell
	alive bool
}

func (a *testActor) Ref() collision.Ref { return collision.Ref{Kind: a.kind, ID: 1} }
func (a *testActor) Layer() collision.Layer { return collision.LayerActors }
func (a *testActor) Tag() collision.Tag { return collision.TagNone }
func (a *testActor) Active() bool { return a.alive }
func (a *testActor) Edges() []collision.Edge { return collision.BoxEdges(a.Bounds()) }
func (a *testActor) Bounds() collision.Rect {
	return collision.Box(center(a.cell.X, a.cell.Y), grid.Point{X: 0.5, Y: 0.5})
}

type fixture struct {
	world    *collision.World
	timers   *timer.Scheduler
	reg      *Registry
	audio    *recordAudio
	exit     *countExit
	dialogue *dialogue.Manager
}

func newFixture() *fixture {
	f := &fixture{
		world:    collision.NewWorld(grid.NewIndex(1)),
		timers:   timer.NewScheduler(),
		audio:    &recordAudio{},
		exit:     &countExit{},
		dialogue: dialogue.NewManager(),
	}
	f.reg = NewRegistry(f.world, f.timers, Services{Audio: f.audio, Exit: f.exit, Dialogue: f.dialogue}, DefaultConfig())
	return f
}

func center(x, y int) grid.Point {
	return grid.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func (f *fixture) spawn(t *testing.T, spec Spec) *Entity {
	t.Helper()
	id, err := f.reg.Spawn(spec)
	require.NoError(t, err)
	e, ok := f.reg.Get(id)
	require.True(t, ok)
	return e
}

func (f *fixture) lightForm(t *testing.T, e *Entity) *Entity {
	t.Helper()
	lf, ok := f.reg.Get(e.LightForm())
	require.True(t, ok, "block %q has no light form", e.Name())
	return lf
}

func TestSpawnSnapsToCellCentre(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "w", Kind: KindWall, Pos: grid.Point{X: 2.9, Y: 4.1}})

	assert.Equal(t, grid.Cell{X: 2, Y: 4}, e.Cell())
	assert.Equal(t, center(2, 4), e.Pos())
	assert.True(t, e.Visible())
}

func TestSpawnRejectsPseudoKinds(t *testing.T) {
	f := newFixture()
	_, err := f.reg.Spawn(Spec{Name: "x", Kind: KindRepeat})
	assert.Error(t, err)
	_, err = f.reg.Spawn(Spec{Name: "x", Kind: KindEmptySpace})
	assert.Error(t, err)
}

func TestLightFormCreatedOnceAndHidden(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(1, 1), LightForm: KindWall, Movable: true})
	lf := f.lightForm(t, e)

	assert.True(t, lf.IsLightForm())
	assert.Equal(t, e.ID(), lf.Parent())
	assert.False(t, lf.Visible())
	assert.True(t, lf.Movable(), "light form copies movable")
	assert.Equal(t, NoID, lf.LightForm(), "light forms never get their own light form")
	assert.Equal(t, 2, f.reg.Len())
}

func TestNoLightFormForEmptyRepeatOrUnknownTemplate(t *testing.T) {
	f := newFixture()
	for _, k := range []Kind{KindEmptySpace, KindRepeat, KindNextLevel} {
		e := f.spawn(t, Spec{Name: k.String(), Kind: KindWall, Pos: center(int(k), 0), LightForm: k})
		assert.Equal(t, NoID, e.LightForm(), "light form %s", k)
	}
	assert.Equal(t, 3, f.reg.Len())
}

func TestRepeatShineNeverChangesVisibility(t *testing.T) {
	f := newFixture()
	for _, hidden := range []bool{false, true} {
		e := f.spawn(t, Spec{Name: "r", Kind: KindWall, Pos: center(0, 0), LightForm: KindRepeat, Hidden: hidden})
		f.reg.ShineBlock(e.ID())
		assert.Equal(t, !hidden, e.Visible())
		f.reg.DeshineBlock(e.ID())
		assert.Equal(t, !hidden, e.Visible())
	}
}

func TestShineRoundTripRestoresVisibility(t *testing.T) {
	for _, lfKind := range []Kind{KindWall, KindEmptySpace, KindSwitch} {
		t.Run(lfKind.String(), func(t *testing.T) {
			f := newFixture()
			e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: lfKind})
			lf, hasLF := f.reg.Get(e.LightForm())

			f.reg.ShineBlock(e.ID())
			assert.False(t, e.Visible())
			if hasLF {
				assert.True(t, lf.Visible())
			}

			f.reg.DeshineBlock(e.ID())
			assert.True(t, e.Visible())
			if hasLF {
				assert.False(t, lf.Visible())
			}
		})
	}
}

func TestFullyDisabledIgnoresShine(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall})
	lf := f.lightForm(t, e)

	f.reg.FullyDisable(e.ID())
	assert.False(t, e.Visible())
	assert.False(t, lf.Visible())

	f.reg.DeshineBlock(e.ID())
	assert.False(t, e.Visible(), "deshine is ignored while fully disabled")

	f.reg.Illuminate(e.ID())
	f.reg.ResolveIllumination()
	assert.False(t, e.Shining())

	f.reg.FullyEnable(e.ID())
	assert.True(t, e.Visible())
	assert.False(t, e.FullyDisabled())
}

// Shining a block shows its light wall; shining again, or shining the light
// form itself, changes nothing.
func TestShineLightWallIsIdempotent(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall})
	lf := f.lightForm(t, e)

	f.reg.ShineBlock(e.ID())
	assert.False(t, e.Visible())
	assert.True(t, lf.Visible())

	f.reg.ShineBlock(lf.ID())
	f.reg.ShineBlock(e.ID())
	assert.False(t, e.Visible())
	assert.True(t, lf.Visible())
}

func TestIlluminationDeshinesOneFrameAfterLastHit(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindEmptySpace})

	// Frame N: hit
	f.reg.Illuminate(e.ID())
	f.reg.Illuminate(e.ID())
	f.reg.ResolveIllumination()
	assert.True(t, e.Shining())
	assert.False(t, e.Visible())

	// Frame N+1: hit again, still shining
	f.reg.Illuminate(e.ID())
	f.reg.ResolveIllumination()
	assert.True(t, e.Shining())

	// Frame N+2: no hit, deshone by the end of the frame
	f.reg.ResolveIllumination()
	assert.False(t, e.Shining())
	assert.True(t, e.Visible())
}

func TestIlluminationIgnoresLightForms(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall})
	lf := f.lightForm(t, e)

	f.reg.Illuminate(lf.ID())
	f.reg.ResolveIllumination()
	assert.False(t, lf.Shining())
	assert.False(t, e.Shining())
}

func TestShineEdgesFireSwitchEffects(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleDisappear})
	target := f.spawn(t, Spec{Name: "t", Kind: KindWall, Pos: center(3, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), target.ID()))

	f.reg.Illuminate(sw.ID())
	f.reg.ResolveIllumination()
	assert.True(t, sw.Variant().(*Switch).On())
	assert.True(t, target.FullyDisabled())
	assert.False(t, target.Visible())

	f.reg.ResolveIllumination()
	assert.False(t, sw.Variant().(*Switch).On())
	assert.False(t, target.FullyDisabled())
	assert.True(t, target.Visible())
}

func TestMoveBlockRejections(t *testing.T) {
	f := newFixture()
	fixed := f.spawn(t, Spec{Name: "fixed", Kind: KindWall, Pos: center(0, 0)})
	movable := f.spawn(t, Spec{Name: "m", Kind: KindWall, Pos: center(0, 2), LightForm: KindWall, Movable: true})
	lf := f.lightForm(t, movable)

	assert.Equal(t, fixed.Cell(), f.reg.MoveBlock(fixed.ID(), grid.DirRight), "immovable")
	assert.Equal(t, lf.Cell(), f.reg.MoveBlock(lf.ID(), grid.DirRight), "light form")
	assert.Equal(t, movable.Cell(), f.reg.MoveBlock(movable.ID(), grid.DirNone), "invalid direction")

	f.spawn(t, Spec{Name: "wall", Kind: KindWall, Pos: center(1, 2)})
	assert.Equal(t, grid.Cell{X: 0, Y: 2}, f.reg.MoveBlock(movable.ID(), grid.DirRight), "visible block ahead")

	f.world.Add(&testActor{kind: collision.RefEnemy, cell: grid.Cell{X: 0, Y: 3}, alive: true})
	assert.Equal(t, grid.Cell{X: 0, Y: 2}, f.reg.MoveBlock(movable.ID(), grid.DirDown), "enemy ahead")

	f.spawn(t, Spec{Name: "door", Kind: KindAppearDoor, Pos: center(0, 1)})
	assert.Equal(t, grid.Cell{X: 0, Y: 2}, f.reg.MoveBlock(movable.ID(), grid.DirUp), "door cell forbids blocks")

	assert.Empty(t, f.audio.effects)
}

func TestMoveBlockSucceedsAndReservesSource(t *testing.T) {
	f := newFixture()
	a := f.spawn(t, Spec{Name: "a", Kind: KindWall, Pos: center(1, 1), LightForm: KindWall, Movable: true})
	b := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(1, 2), Movable: true})

	got := f.reg.MoveBlock(a.ID(), grid.DirRight)
	assert.Equal(t, grid.Cell{X: 2, Y: 1}, got)
	assert.Equal(t, got, a.Cell())
	assert.Equal(t, got, f.lightForm(t, a).Cell(), "light form follows the parent")
	assert.Equal(t, center(1, 1), a.Pos(), "visual position eases over frames")
	assert.Equal(t, []audio.Effect{audio.EffectPush}, f.audio.effects)

	source := grid.Cell{X: 1, Y: 1}
	assert.True(t, f.reg.Reserved(source))
	assert.False(t, f.reg.CanMove(b.ID(), grid.DirUp))
	assert.Equal(t, grid.Cell{X: 1, Y: 2}, f.reg.MoveBlock(b.ID(), grid.DirUp))

	f.timers.Advance(100 * time.Millisecond)
	assert.False(t, f.reg.Reserved(source))
	assert.Equal(t, source, f.reg.MoveBlock(b.ID(), grid.DirUp))
}

func TestDeathCrushesOnlyTheMover(t *testing.T) {
	f := newFixture()
	mover := f.spawn(t, Spec{Name: "mover", Kind: KindWall, Pos: center(1, 0), Movable: true})
	sitter := f.spawn(t, Spec{Name: "sitter", Kind: KindWall, Pos: center(2, 0), LightForm: KindEmptySpace, Movable: true})

	// Shining the sitter away lets the mover into its cell
	f.reg.ShineBlock(sitter.ID())
	require.Equal(t, grid.Cell{X: 2, Y: 0}, f.reg.MoveBlock(mover.ID(), grid.DirRight))
	f.reg.DeshineBlock(sitter.ID())

	crushed := f.reg.CheckDeaths()
	assert.Equal(t, []ID{mover.ID()}, crushed)
	assert.True(t, mover.Dead())
	assert.False(t, sitter.Dead())

	assert.Empty(t, f.reg.CheckDeaths(), "the survivor has nothing left to collide with")
}

func TestDeathSparesMoverInsideHiddenBlock(t *testing.T) {
	f := newFixture()
	mover := f.spawn(t, Spec{Name: "mover", Kind: KindWall, Pos: center(1, 0), Movable: true})
	sitter := f.spawn(t, Spec{Name: "sitter", Kind: KindWall, Pos: center(2, 0), LightForm: KindEmptySpace, Movable: true})

	f.reg.ShineBlock(sitter.ID())
	require.Equal(t, grid.Cell{X: 2, Y: 0}, f.reg.MoveBlock(mover.ID(), grid.DirRight))

	assert.Empty(t, f.reg.CheckDeaths(), "the hidden block is not crushed by the newer mover")
	assert.False(t, sitter.Dead())
	assert.False(t, mover.Dead())

	// Once the sitter is back the mover loses
	f.reg.DeshineBlock(sitter.ID())
	assert.Equal(t, []ID{mover.ID()}, f.reg.CheckDeaths())
	assert.False(t, sitter.Dead())
}

func TestDeathIgnoresOwnLightForm(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall, Movable: true})
	f.reg.ShineBlock(e.ID())

	assert.Empty(t, f.reg.CheckDeaths())
	assert.Equal(t, 2, f.reg.Len())
}

func TestDestroyRemovesPairAndBodies(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall})
	lfID := e.LightForm()
	require.Equal(t, 2, f.world.Len())

	f.reg.Destroy(lfID)
	assert.Equal(t, 0, f.reg.Len())
	assert.Equal(t, 0, f.world.Len())
	_, ok := f.reg.Get(e.ID())
	assert.False(t, ok)
}

// A ToggleMovement switch toggles (rather than sets) the linked door's
// movability, once per cooldown window.
func TestSwitchToggleMovementRespectsCooldown(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleMovement})
	door := f.spawn(t, Spec{Name: "door", Kind: KindMovableDoor, Pos: center(4, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), door.ID()))
	assert.True(t, door.MovementLinked())

	f.reg.ShineInteract(sw.ID())
	assert.True(t, door.Movable())

	f.reg.ShineInteract(sw.ID())
	assert.True(t, door.Movable(), "second activation inside the cooldown is ignored")

	f.timers.Advance(500 * time.Millisecond)
	f.reg.ShineInteract(sw.ID())
	assert.False(t, door.Movable())
}

// A beam flickering faster than the cooldown must not leave the linked
// block toggled once the light is gone.
func TestFlickeringBeamLeavesNoDrift(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleMovement})
	door := f.spawn(t, Spec{Name: "door", Kind: KindMovableDoor, Pos: center(4, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), door.ID()))

	for frame, lit := range []bool{true, false, true, false} {
		if lit {
			f.reg.Illuminate(sw.ID())
		}
		f.reg.ResolveIllumination()
		f.timers.Advance(16 * time.Millisecond)
		assert.Equal(t, lit && frame == 0, sw.Variant().(*Switch).On(), "frame %d", frame)
	}
	assert.False(t, door.Movable())
}

func TestInvisibleSwitchDoesNothing(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindEmptySpace, SwitchMode: ToggleMovement})
	door := f.spawn(t, Spec{Name: "door", Kind: KindMovableDoor, Pos: center(4, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), door.ID()))

	f.reg.Illuminate(sw.ID())
	f.reg.ResolveIllumination()
	assert.False(t, sw.Visible())
	assert.False(t, door.Movable())
}

func TestDanglingLinkIsSkipped(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleShine})
	target := f.spawn(t, Spec{Name: "t", Kind: KindWall, Pos: center(4, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), target.ID()))
	f.reg.Destroy(target.ID())

	assert.NotPanics(t, func() { f.reg.ShineInteract(sw.ID()) })
}

func TestToggleAppearDrivesDoors(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleAppear})
	appear := f.spawn(t, Spec{Name: "in", Kind: KindAppearDoor, Pos: center(2, 0)})
	require.NoError(t, f.reg.Link(sw.ID(), appear.ID()))
	assert.False(t, appear.Visible())
	assert.True(t, appear.FullyDisabled())

	f.reg.ShineInteract(sw.ID())
	assert.True(t, appear.Visible())
	f.reg.ShineDeinteract(sw.ID())
	assert.False(t, appear.Visible())

	sw2 := f.spawn(t, Spec{Name: "sw2", Kind: KindSwitch, Pos: center(0, 2), LightForm: KindRepeat, SwitchMode: ToggleAppear})
	disappear := f.spawn(t, Spec{Name: "out", Kind: KindDisappearDoor, Pos: center(2, 2)})
	require.NoError(t, f.reg.Link(sw2.ID(), disappear.ID()))
	assert.True(t, disappear.Visible())

	f.reg.ShineInteract(sw2.ID())
	assert.False(t, disappear.Visible())

	// Light never reaches a door's state
	f.reg.Illuminate(disappear.ID())
	f.reg.ResolveIllumination()
	assert.False(t, disappear.Visible())
}

func TestToggleShineFlipsLinkedForm(t *testing.T) {
	f := newFixture()
	sw := f.spawn(t, Spec{Name: "sw", Kind: KindSwitch, Pos: center(0, 0), LightForm: KindRepeat, SwitchMode: ToggleShine})
	target := f.spawn(t, Spec{Name: "t", Kind: KindWall, Pos: center(3, 0), LightForm: KindWall})
	require.NoError(t, f.reg.Link(sw.ID(), target.ID()))

	f.reg.ShineInteract(sw.ID())
	assert.False(t, target.Visible())
	assert.True(t, f.lightForm(t, target).Visible())

	f.reg.ShineDeinteract(sw.ID())
	assert.True(t, target.Visible())
}

func TestPressurePlateEdgeTriggers(t *testing.T) {
	f := newFixture()
	plate := f.spawn(t, Spec{Name: "plate", Kind: KindPressurePlate, Pos: center(3, 3), SwitchMode: ToggleDisappear})
	wall := f.spawn(t, Spec{Name: "wall", Kind: KindWall, Pos: center(6, 3)})
	require.NoError(t, f.reg.Link(plate.ID(), wall.ID()))
	assert.False(t, plate.Visible())

	player := &testActor{kind: collision.RefPlayer, cell: grid.Cell{X: 3, Y: 3}, alive: true}
	f.world.Add(player)
	f.reg.Tick()
	assert.True(t, plate.Variant().(*PressurePlate).On())
	assert.False(t, wall.Visible())

	f.reg.Tick()
	assert.True(t, wall.FullyDisabled(), "staying on the plate fires nothing new")

	player.cell = grid.Cell{X: 2, Y: 3}
	f.reg.Tick()
	assert.False(t, plate.Variant().(*PressurePlate).On())
	assert.True(t, wall.Visible())
}

func TestPressurePlateKeyBlocks(t *testing.T) {
	f := newFixture()
	plate := f.spawn(t, Spec{Name: "plate", Kind: KindPressurePlate, Pos: center(3, 3), SwitchMode: ToggleMovement})
	door := f.spawn(t, Spec{Name: "door", Kind: KindMovableDoor, Pos: center(6, 6)})
	key := f.spawn(t, Spec{Name: "key", Kind: KindWall, Pos: center(2, 3), Movable: true})
	require.NoError(t, f.reg.Link(plate.ID(), door.ID()))
	require.NoError(t, f.reg.SetKeyBlocks(plate.ID(), []ID{key.ID()}))

	f.world.Add(&testActor{kind: collision.RefPlayer, cell: grid.Cell{X: 3, Y: 3}, alive: true})
	f.reg.Tick()
	assert.False(t, door.Movable(), "only key blocks press a keyed plate")

	f.reg.MoveBlock(key.ID(), grid.DirRight)
	f.reg.Tick()
	assert.True(t, door.Movable())
}

func TestNextLevelMarkerFiresOnce(t *testing.T) {
	f := newFixture()
	f.spawn(t, Spec{Name: "exit", Kind: KindNextLevel, Pos: center(5, 5)})

	player := &testActor{kind: collision.RefPlayer, cell: grid.Cell{X: 4, Y: 5}, alive: true}
	f.world.Add(player)
	f.reg.Tick()
	assert.Equal(t, 0, f.exit.calls)

	player.cell = grid.Cell{X: 5, Y: 5}
	f.reg.Tick()
	f.reg.Tick()
	assert.Equal(t, 1, f.exit.calls)
	assert.Equal(t, []audio.Effect{audio.EffectNextLevel}, f.audio.effects)
}

func TestInteract(t *testing.T) {
	f := newFixture()
	npc := f.spawn(t, Spec{
		Name:     "npc",
		Kind:     KindNPC,
		Pos:      center(0, 0),
		Dialogue: []dialogue.Line{{Speaker: "Alice", Text: "Hi"}},
	})
	player := collision.Ref{Kind: collision.RefPlayer, ID: 1}

	f.reg.Interact(npc.ID(), player, grid.DirUp)
	assert.True(t, f.dialogue.IsDialogueActive())

	crate := f.spawn(t, Spec{Name: "crate", Kind: KindWall, Pos: center(3, 3), LightForm: KindWall, Movable: true})
	f.reg.ShineBlock(crate.ID())
	f.reg.Interact(crate.LightForm(), player, grid.DirDown)
	assert.Equal(t, grid.Cell{X: 3, Y: 4}, crate.Cell(), "pushing a light form moves its parent")
}

func TestInterpolateEasesTowardsTarget(t *testing.T) {
	f := newFixture()
	e := f.spawn(t, Spec{Name: "b", Kind: KindWall, Pos: center(0, 0), LightForm: KindWall, Movable: true})
	f.reg.MoveBlock(e.ID(), grid.DirRight)

	f.reg.Interpolate()
	assert.InDelta(t, 0.6, e.Pos().X, 1e-9)
	assert.Equal(t, e.Pos(), f.lightForm(t, e).Pos())

	for i := 0; i < 200; i++ {
		f.reg.Interpolate()
	}
	assert.Equal(t, center(1, 0), e.Pos())
}
