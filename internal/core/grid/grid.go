// Package grid converts between continuous world positions and integer cells.
// Every block and actor owns exactly one authoritative cell; positions in
// world units are only used for rendering and ray geometry.
package grid

import "math"

// Point represents a 2D point (or vector) in world space
type Point struct {
	X, Y float64
}

// Cell represents a grid coordinate
type Cell struct {
	X, Y int
}

// Add returns the sum of two points
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p - o
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Scale multiplies both components by s
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of two vectors
func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }

// Len returns the vector length
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Normalize returns the unit vector in the same direction, or the zero vector
func (p Point) Normalize() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Reflect mirrors the direction p about a surface with unit normal n
func (p Point) Reflect(n Point) Point {
	d := 2 * p.Dot(n)
	return Point{p.X - d*n.X, p.Y - d*n.Y}
}

// Lerp moves p towards to by fraction t
func (p Point) Lerp(to Point, t float64) Point {
	return Point{p.X + (to.X-p.X)*t, p.Y + (to.Y-p.Y)*t}
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return b.Sub(a).Len()
}

// Add returns the cell offset by d
func (c Cell) Add(d Cell) Cell { return Cell{c.X + d.X, c.Y + d.Y} }

// Direction represents one of the four grid axis directions
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Delta returns the cell offset for a direction. Y grows downward.
func (d Direction) Delta() Cell {
	switch d {
	case DirUp:
		return Cell{0, -1}
	case DirDown:
		return Cell{0, 1}
	case DirLeft:
		return Cell{-1, 0}
	case DirRight:
		return Cell{1, 0}
	default:
		return Cell{}
	}
}

// Vector returns the unit world vector for a direction
func (d Direction) Vector() Point {
	c := d.Delta()
	return Point{float64(c.X), float64(c.Y)}
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

// Valid reports whether d is one of the four axis directions
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// String returns the lowercase name used in level files
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection converts a level-file name to a Direction
func ParseDirection(s string) Direction {
	switch s {
	case "up", "north":
		return DirUp
	case "down", "south":
		return DirDown
	case "left", "west":
		return DirLeft
	case "right", "east":
		return DirRight
	default:
		return DirNone
	}
}

// Index maps world positions onto a square grid
type Index struct {
	CellSize float64
	Origin   Point
}

// NewIndex creates an index with the given cell size and origin at (0,0)
func NewIndex(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Index{CellSize: cellSize}
}

// WorldToCell returns the cell whose centre is nearest to p
func (ix *Index) WorldToCell(p Point) Cell {
	return Cell{
		X: int(math.Floor((p.X - ix.Origin.X) / ix.CellSize)),
		Y: int(math.Floor((p.Y - ix.Origin.Y) / ix.CellSize)),
	}
}

// CellCenter returns the world position of the centre of c
func (ix *Index) CellCenter(c Cell) Point {
	return Point{
		X: ix.Origin.X + (float64(c.X)+0.5)*ix.CellSize,
		Y: ix.Origin.Y + (float64(c.Y)+0.5)*ix.CellSize,
	}
}

// Snap moves p onto the centre of its cell
func (ix *Index) Snap(p Point) Point {
	return ix.CellCenter(ix.WorldToCell(p))
}
