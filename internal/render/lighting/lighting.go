// Package lighting turns the flashlight mesh into a light mask and
// composites it over the scene.
package lighting

import (
	"image"
	"image/color"
	"log"

	"chosenoffset.com/lumen/internal/render"
)

// Manager owns the offscreen scene and mask textures and the shader that
// combines them. Without a shader the mask is laid over the scene as is.
type Manager struct {
	renderer render.Renderer
	shader   render.Shader

	scene render.Image
	mask  render.Image
	white render.Image

	ambientLight float64 // brightness of unlit areas (0.0 = pitch black, 1.0 = fully lit)
	beamColor    color.NRGBA
}

// NewManager creates a lighting manager. A shader that fails to compile is
// logged and the manager falls back to the plain overlay.
func NewManager(r render.Renderer, shaderSrc []byte) *Manager {
	m := &Manager{
		renderer:     r,
		ambientLight: 0.25,
		beamColor:    color.NRGBA{255, 242, 190, 153},
	}
	if len(shaderSrc) > 0 {
		shader, err := r.CompileShader(shaderSrc)
		if err != nil {
			log.Printf("Warning: failed to compile lighting shader: %v", err)
		} else {
			m.shader = shader
		}
	}
	return m
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = min(max(level, 0), 1)
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// SetBeamColor sets the colour the lit area is filled with
func (m *Manager) SetBeamColor(c color.NRGBA) {
	m.beamColor = c
}

// HasShader reports whether compositing runs through the shader
func (m *Manager) HasShader() bool {
	return m.shader != nil
}

// Begin sizes the textures for a w x h frame, clears the mask and returns
// the scene texture to draw the world into.
func (m *Manager) Begin(w, h int) render.Image {
	m.scene = m.resized(m.scene, w, h)
	m.mask = m.resized(m.mask, w, h)
	if m.white == nil {
		img := m.renderer.NewImage(3, 3)
		img.Fill(color.White)
		m.white = img.SubImage(image.Rect(1, 1, 2, 2))
	}
	m.scene.Clear()
	m.mask.Clear()
	return m.scene
}

func (m *Manager) resized(img render.Image, w, h int) render.Image {
	if img != nil {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return img
		}
		img.Dispose()
	}
	return m.renderer.NewImage(w, h)
}

// AddMesh adds lit triangles to the mask. Only the destination positions of
// vertices are used; overlapping triangles add up.
func (m *Manager) AddMesh(vertices []render.Vertex, indices []uint16) {
	if m.mask == nil || len(indices) == 0 {
		return
	}
	r := float32(m.beamColor.R) / 255
	g := float32(m.beamColor.G) / 255
	b := float32(m.beamColor.B) / 255
	a := float32(m.beamColor.A) / 255
	for i := range vertices {
		v := &vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, g, b, a
	}
	m.mask.DrawTriangles(vertices, indices, m.white, &render.DrawTrianglesOptions{
		AntiAlias: true,
		Additive:  true,
	})
}

// Composite draws the lit scene onto screen shifted by (dx, dy)
func (m *Manager) Composite(screen render.Image, dx, dy float64) {
	if m.scene == nil {
		return
	}
	if m.shader == nil {
		opts := &render.DrawImageOptions{}
		opts.GeoM.Translate(dx, dy)
		screen.DrawImage(m.scene, opts)
		screen.DrawImage(m.mask, opts)
		return
	}

	w, h := screen.Size()
	opts := &render.DrawRectShaderOptions{
		Uniforms: map[string]interface{}{
			"Ambient": float32(m.ambientLight),
		},
	}
	opts.Images[0] = m.scene
	opts.Images[1] = m.mask
	opts.GeoM.Translate(dx, dy)
	screen.DrawRectShader(w, h, m.shader, opts)
}
