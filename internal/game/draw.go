package game

import (
	"image/color"
	"time"

	"chosenoffset.com/lumen/internal/actor"
	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/core/grid"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/level"
	"chosenoffset.com/lumen/internal/render"
	"chosenoffset.com/lumen/internal/render/lighting"
)

var (
	colorBackground = color.RGBA{8, 8, 14, 255}
	colorFloorA     = color.RGBA{34, 34, 44, 255}
	colorFloorB     = color.RGBA{30, 30, 40, 255}
	colorWall       = color.RGBA{70, 66, 84, 255}
	colorWallEdge   = color.RGBA{110, 104, 130, 255}
	colorMirror     = color.RGBA{170, 220, 255, 255}
	colorPlayer     = color.RGBA{240, 220, 150, 255}
	colorFlashlight = color.RGBA{255, 240, 120, 255}
	colorCrawler    = color.RGBA{220, 70, 70, 255}
	colorCopier     = color.RGBA{200, 90, 200, 255}
	colorLightForm  = color.RGBA{250, 245, 200, 200}
	colorHidden     = color.RGBA{120, 120, 140, 120}
	colorSwitchOn   = color.RGBA{120, 255, 140, 255}
	colorSwitchOff  = color.RGBA{90, 60, 60, 255}
	colorPanel      = color.RGBA{10, 10, 20, 220}
	colorText       = color.RGBA{230, 230, 230, 255}
)

var kindColors = map[block.Kind]color.RGBA{
	block.KindWall:          {120, 100, 80, 255},
	block.KindSwitch:        {80, 140, 200, 255},
	block.KindPressurePlate: {100, 100, 120, 255},
	block.KindMovableDoor:   {160, 110, 60, 255},
	block.KindAppearDoor:    {90, 160, 120, 255},
	block.KindDisappearDoor: {160, 80, 100, 255},
	block.KindNPC:           {110, 190, 230, 255},
	block.KindNextLevel:     {80, 220, 120, 255},
}

// ambientLight is how bright unlit parts of the scene stay
const ambientLight = 0.2

const (
	shakeDuration  = 300 * time.Millisecond
	shakeMagnitude = 4.0
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	if g.lighting == nil {
		g.lighting = lighting.NewManager(g.Renderer, g.lightingShaderSrc)
		g.lighting.SetAmbientLight(ambientLight)
	}

	// Step 1: Render the scene to an offscreen texture
	w, h := screen.Size()
	scene := g.lighting.Begin(w, h)
	scene.Fill(colorBackground)
	if root := g.Levels.CurrentLevelRoot(); root != nil {
		g.drawFloor(scene, root)
		g.drawWalls(scene, root)
		g.drawBlocks(scene, root)
		g.drawActors(scene, root)
	}

	// Step 2: Fill the flashlight mesh into the light mask
	g.drawLightMesh()

	// Step 3: Composite scene and mask
	dx, dy := g.shakeOffset()
	g.lighting.Composite(screen, dx, dy)

	// Step 4: Draw UI elements on top (unaffected by lighting)
	g.drawBursts(screen)
	g.drawUI(screen)
	g.drawDialogue(screen)
	if g.State == StatePaused {
		g.drawPause(screen)
	}
}

// shakeOffset jitters the world after a death, fading over shakeDuration
func (g *Game) shakeOffset() (float64, float64) {
	if g.shake <= 0 {
		return 0, 0
	}
	amount := shakeMagnitude * g.shake.Seconds() / shakeDuration.Seconds()
	if (g.shake/g.dt)%2 == 1 {
		amount = -amount
	}
	return amount, -amount / 2
}

// toScreen converts a world position to screen space
func (g *Game) toScreen(p grid.Point) (float32, float32) {
	return float32(p.X - g.Camera.X), float32(p.Y - g.Camera.Y)
}

func (g *Game) drawFloor(dst render.Image, root *level.Root) {
	cs := root.Index.CellSize
	for y := 0; y < root.Data.Height(); y++ {
		for x := 0; x < root.Data.Width(); x++ {
			if root.Solid(grid.Cell{X: x, Y: y}) {
				continue
			}
			clr := colorFloorA
			if (x+y)%2 == 1 {
				clr = colorFloorB
			}
			sx, sy := g.toScreen(grid.Point{X: float64(x) * cs, Y: float64(y) * cs})
			g.Renderer.FillRect(dst, sx, sy, float32(cs), float32(cs), clr)
		}
	}
}

func (g *Game) drawWalls(dst render.Image, root *level.Root) {
	cs := root.Index.CellSize
	for y := 0; y < root.Data.Height(); y++ {
		for x := 0; x < root.Data.Width(); x++ {
			if root.Data.TileAt(x, y) != level.TileWall {
				continue
			}
			sx, sy := g.toScreen(grid.Point{X: float64(x) * cs, Y: float64(y) * cs})
			g.Renderer.FillRect(dst, sx, sy, float32(cs), float32(cs), colorWall)
		}
	}
	for _, region := range root.Walls {
		for _, e := range region {
			ax, ay := g.toScreen(e.A)
			bx, by := g.toScreen(e.B)
			g.Renderer.StrokeLine(dst, ax, ay, bx, by, 1, colorWallEdge)
		}
	}
	for _, m := range root.Mirrors {
		for _, e := range m.Edges() {
			ax, ay := g.toScreen(e.A)
			bx, by := g.toScreen(e.B)
			g.Renderer.StrokeLine(dst, ax, ay, bx, by, 3, colorMirror)
		}
	}
}

func (g *Game) drawBlocks(dst render.Image, root *level.Root) {
	cs := float32(root.Index.CellSize)
	inset := cs * 0.08
	for _, e := range root.Blocks.Entities() {
		sx, sy := g.toScreen(e.Pos())
		x, y := sx-cs/2+inset, sy-cs/2+inset
		size := cs - 2*inset

		if !e.Visible() {
			// Hidden blocks still show where they are
			if !e.IsLightForm() {
				g.Renderer.StrokeRect(dst, x, y, size, size, 1, colorHidden)
			}
			continue
		}

		clr, ok := kindColors[e.Kind()]
		if !ok {
			clr = colorHidden
		}
		if e.IsLightForm() {
			clr = colorLightForm
		}
		switch e.Kind() {
		case block.KindPressurePlate, block.KindNextLevel:
			g.Renderer.StrokeRect(dst, x, y, size, size, 2, clr)
		case block.KindNPC:
			g.Renderer.FillCircle(dst, sx, sy, size/2, clr)
		default:
			g.Renderer.FillRect(dst, x, y, size, size, clr)
		}
		if e.Movable() {
			g.Renderer.StrokeRect(dst, x+size/4, y+size/4, size/2, size/2, 1, colorBackground)
		}

		var on, hasState bool
		switch v := e.Variant().(type) {
		case *block.Switch:
			on, hasState = v.On(), true
		case *block.PressurePlate:
			on, hasState = v.On(), true
		}
		if hasState {
			lamp := colorSwitchOff
			if on {
				lamp = colorSwitchOn
			}
			g.Renderer.FillCircle(dst, sx, sy, size/6, lamp)
		}
	}
}

func (g *Game) drawActors(dst render.Image, root *level.Root) {
	radius := float32(root.Index.CellSize) * 0.35
	for _, enemy := range root.Enemies.Enemies() {
		clr := colorCrawler
		if _, ok := enemy.(*actor.Copier); ok {
			clr = colorCopier
		}
		sx, sy := g.toScreen(enemy.Pos())
		g.Renderer.FillCircle(dst, sx, sy, radius, clr)
		fx, fy := g.toScreen(enemy.Pos().Add(enemy.Facing().Vector().Scale(float64(radius))))
		g.Renderer.StrokeLine(dst, sx, sy, fx, fy, 2, colorBackground)
	}

	player := root.Player
	if !player.Dead() {
		sx, sy := g.toScreen(player.Pos())
		g.Renderer.FillCircle(dst, sx, sy, radius, colorPlayer)
	}
	if !g.Flashlight.Held() {
		fx, fy := g.toScreen(g.Flashlight.Origin(player))
		g.Renderer.FillCircle(dst, fx, fy, radius/3, colorFlashlight)
	}
}

// drawLightMesh converts the lit area to screen space for the mask
func (g *Game) drawLightMesh() {
	mesh := g.Frame.Mesh
	if len(mesh.Indices) == 0 {
		return
	}
	vertices := make([]render.Vertex, len(mesh.Vertices))
	for i, p := range mesh.Vertices {
		vertices[i].DstX, vertices[i].DstY = g.toScreen(p)
	}
	g.lighting.AddMesh(vertices, mesh.Indices)
}

func (g *Game) drawBursts(screen render.Image) {
	root := g.Levels.CurrentLevelRoot()
	if root == nil {
		return
	}
	cs := float32(root.Index.CellSize)
	for _, b := range g.Bursts.Active() {
		t := float32(b.Age / g.Bursts.Lifetime)
		alpha := uint8(255 * (1 - t))
		sx, sy := g.toScreen(b.At)
		g.Renderer.StrokeCircle(screen, sx, sy, cs*(0.3+t), 2, color.RGBA{255, 255, 255, alpha})
	}
}

func (g *Game) drawUI(screen render.Image) {
	if root := g.Levels.CurrentLevelRoot(); root != nil {
		status := root.Data.Name
		if !g.Flashlight.Held() {
			status += "  [flashlight dropped]"
		}
		g.Renderer.DrawText(screen, status, 10, 10, colorText, 1.0)
	}

	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

func (g *Game) drawDialogue(screen render.Image) {
	if !g.Dialogue.IsDialogueActive() {
		return
	}
	w, h := screen.Size()
	const margin, boxHeight = 20, 110
	boxW := w - 2*margin
	boxY := h - boxHeight - margin
	g.Renderer.FillRect(screen, margin, float32(boxY), float32(boxW), boxHeight, colorPanel)
	g.Renderer.StrokeRect(screen, margin, float32(boxY), float32(boxW), boxHeight, 1, colorText)

	speaker, body := g.Dialogue.Current()
	y := boxY + 10
	if speaker != "" {
		g.Renderer.DrawText(screen, speaker, margin+10, y, colorSwitchOn, 1.0)
		y += 18
	}
	charW, lineH := g.Renderer.MeasureText("M", 1.0)
	perLine := max((boxW-20)/max(charW, 1), 1)
	for _, line := range dialogue.Wrap(body, perLine) {
		g.Renderer.DrawText(screen, line, margin+10, y, colorText, 1.0)
		y += lineH + 2
	}
	if g.Dialogue.LineComplete() {
		g.Renderer.DrawText(screen, "[Space]", margin+boxW-70, boxY+boxHeight-20, colorHidden, 1.0)
	}
}

func (g *Game) drawPause(screen render.Image) {
	w, h := screen.Size()
	g.Renderer.FillRect(screen, 0, 0, float32(w), float32(h), color.RGBA{0, 0, 0, 150})
	const label = "PAUSED"
	tw, th := g.Renderer.MeasureText(label, 2.0)
	g.Renderer.DrawText(screen, label, (w-tw)/2, (h-th)/2, colorText, 2.0)
}
