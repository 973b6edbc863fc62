// Package shaders embeds the Kage sources the game compiles at startup.
package shaders

import _ "embed"

// Lighting composites the scene with the flashlight mask
//
//go:embed lighting.kage
var Lighting []byte
