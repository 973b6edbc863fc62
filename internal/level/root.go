package level

import (
	"log"
	"strings"

	"chosenoffset.com/lumen/internal/actor"
	"chosenoffset.com/lumen/internal/audio"
	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/core/collision"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/light"
	"chosenoffset.com/lumen/internal/timer"
)

// Scene is the level lifecycle the game objects call into
type Scene interface {
	RestartLevel()
	GenerateNextLevel()
	CurrentLevelRoot() *Root
}

// Deps are the services and tuning every level is built with
type Deps struct {
	Audio    audio.Sink
	FX       fx.Sink
	Dialogue dialogue.Service

	Block block.Config
	Actor actor.Config
	Light light.Config
}

// Root is the live state of one loaded level
type Root struct {
	Data    *Data
	Index   *grid.Index
	World   *collision.World
	Timers  *timer.Scheduler
	Blocks  *block.Registry
	Caster  *light.Caster
	Player  *actor.Player
	Enemies *actor.Squad

	// Walls are the merged edges of each wall region, for drawing
	Walls   [][]collision.Edge
	Mirrors []*collision.SegmentBody
}

// Solid reports whether the tile at c is wall or mirror
func (root *Root) Solid(c grid.Cell) bool {
	switch root.Data.TileAt(c.X, c.Y) {
	case TileFloor, TileSpawn:
		return false
	}
	return true
}

// Build creates the runtime state of a level. Blocks, links and enemies the
// level file gets wrong are logged and skipped.
func Build(data *Data, deps Deps, scene Scene) *Root {
	index := grid.NewIndex(data.CellSize)
	world := collision.NewWorld(index)
	root := &Root{
		Data:    data,
		Index:   index,
		World:   world,
		Timers:  timer.NewScheduler(),
		Enemies: &actor.Squad{},
	}

	root.Blocks = block.NewRegistry(world, root.Timers, block.Services{
		Audio:    deps.Audio,
		Dialogue: deps.Dialogue,
		Exit:     scene,
		FX:       deps.FX,
		Terrain:  root,
	}, deps.Block)

	root.buildTerrain()
	root.buildBlocks(data.Blocks)

	env := &actor.Env{
		World:    world,
		Blocks:   root.Blocks,
		Timers:   root.Timers,
		Audio:    deps.Audio,
		FX:       deps.FX,
		Dialogue: deps.Dialogue,
		Scene:    scene,
	}
	root.Player = actor.NewPlayer(env, deps.Actor, root.spawnPoint())
	root.Player.OnStep = root.Enemies.Step
	root.buildEnemies(env, deps.Actor, data.Enemies)

	root.Caster = light.NewCaster(world, root.Blocks, deps.Light)
	return root
}

func (root *Root) spawnPoint() grid.Point {
	if p := root.Data.PlayerSpawn; p != nil {
		return grid.Point{X: p.X, Y: p.Y}
	}
	x, y, _ := root.Data.spawnTile()
	return root.Index.CellCenter(grid.Cell{X: x, Y: y})
}

// buildTerrain adds one static body per wall region and one body per mirror tile
func (root *Root) buildTerrain() {
	data := root.Data
	solid := func(x, y int) bool { return data.TileAt(x, y) == TileWall }
	root.Walls = collision.WallEdges(data.Width(), data.Height(), solid, root.Index)
	for i, edges := range root.Walls {
		root.World.Add(collision.NewStatic(i+1, edges))
	}

	size := root.Index.CellSize
	for y, row := range data.Tiles {
		for x := 0; x < len(row); x++ {
			corner := root.Index.CellCenter(grid.Cell{X: x, Y: y}).Sub(grid.Point{X: size / 2, Y: size / 2})
			var a, b grid.Point
			switch row[x] {
			case TileMirrorUp:
				a, b = grid.Point{X: corner.X, Y: corner.Y + size}, grid.Point{X: corner.X + size, Y: corner.Y}
			case TileMirrorDown:
				a, b = corner, grid.Point{X: corner.X + size, Y: corner.Y + size}
			case TileMirrorV:
				a, b = grid.Point{X: corner.X + size/2, Y: corner.Y}, grid.Point{X: corner.X + size/2, Y: corner.Y + size}
			case TileMirrorH:
				a, b = grid.Point{X: corner.X, Y: corner.Y + size/2}, grid.Point{X: corner.X + size, Y: corner.Y + size/2}
			default:
				continue
			}
			m := collision.NewMirror(len(root.Walls)+len(root.Mirrors)+1, a, b)
			root.Mirrors = append(root.Mirrors, m)
			root.World.Add(m)
		}
	}
}

// buildBlocks spawns every block, then resolves links and key blocks by name
func (root *Root) buildBlocks(blocks []BlockData) {
	ids := make(map[string]block.ID, len(blocks))
	spawned := make([]block.ID, len(blocks))

	for i, bd := range blocks {
		spec, err := blockSpec(bd)
		if err != nil {
			log.Printf("Warning: skipping block %q: %v", bd.Name, err)
			continue
		}
		id, err := root.Blocks.Spawn(spec)
		if err != nil {
			log.Printf("Warning: skipping block %q: %v", bd.Name, err)
			continue
		}
		spawned[i] = id
		if bd.Name != "" {
			ids[bd.Name] = id
		}
	}

	for i, bd := range blocks {
		id := spawned[i]
		if id == block.NoID {
			continue
		}
		if bd.Link != "" {
			target, ok := ids[bd.Link]
			if !ok {
				log.Printf("Warning: block %q links to unknown block %q", bd.Name, bd.Link)
			} else if err := root.Blocks.Link(id, target); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
		if len(bd.KeyBlocks) > 0 {
			keys := make([]block.ID, 0, len(bd.KeyBlocks))
			for _, name := range bd.KeyBlocks {
				if key, ok := ids[name]; ok {
					keys = append(keys, key)
				} else {
					log.Printf("Warning: plate %q names unknown key block %q", bd.Name, name)
				}
			}
			if err := root.Blocks.SetKeyBlocks(id, keys); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
}

func blockSpec(bd BlockData) (block.Spec, error) {
	kind, err := block.ParseKind(bd.Kind)
	if err != nil {
		return block.Spec{}, err
	}
	lightForm, err := block.ParseKind(bd.LightForm)
	if err != nil {
		return block.Spec{}, err
	}
	mode, err := block.ParseSwitchMode(bd.SwitchMode)
	if err != nil {
		return block.Spec{}, err
	}
	return block.Spec{
		Name:       bd.Name,
		Kind:       kind,
		Pos:        grid.Point{X: bd.X, Y: bd.Y},
		LightForm:  lightForm,
		Movable:    bd.Movable,
		Hidden:     bd.Visible != nil && !*bd.Visible,
		SwitchMode: mode,
		Dialogue:   bd.Dialogue,
	}, nil
}

func (root *Root) buildEnemies(env *actor.Env, cfg actor.Config, enemies []EnemyData) {
	for i, ed := range enemies {
		at := grid.Point{X: ed.X, Y: ed.Y}
		switch strings.ToLower(ed.Kind) {
		case "crawler", "":
			root.Enemies.Add(actor.NewCrawler(env, cfg, i+1, at, grid.ParseDirection(ed.Direction)))
		case "copier", "copy":
			root.Enemies.Add(actor.NewCopier(env, cfg, i+1, at, ed.InvertHorizontal, ed.InvertVertical))
		default:
			log.Printf("Warning: skipping enemy %d of unknown kind %q", i, ed.Kind)
		}
	}
}
