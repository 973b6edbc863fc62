package collision

import (
	"chosenoffset.com/lumen/internal/core/grid"
)

// SolidFunc reports whether the tile at (x, y) is level wall
type SolidFunc func(x, y int) bool

// WallEdges extracts the exposed perimeter of every contiguous wall region of
// a width x height tile grid and merges colinear neighbours, so the beam is
// tested against a handful of long edges instead of four per tile.
func WallEdges(width, height int, solid SolidFunc, index *grid.Index) [][]Edge {
	regions := findContiguousRegions(width, height, solid)

	out := make([][]Edge, 0, len(regions))
	for _, region := range regions {
		perimeter := extractPerimeterEdges(region, index)
		out = append(out, mergeColinearEdges(perimeter))
	}
	return out
}

// findContiguousRegions identifies all 4-connected regions of wall tiles
func findContiguousRegions(width, height int, solid SolidFunc) [][]grid.Cell {
	visited := make(map[grid.Cell]bool)
	var regions [][]grid.Cell

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := grid.Cell{X: x, Y: y}
			if visited[c] || !solid(x, y) {
				continue
			}
			regions = append(regions, floodFill(c, width, height, solid, visited))
		}
	}
	return regions
}

// floodFill performs BFS to find all connected wall tiles
func floodFill(start grid.Cell, width, height int, solid SolidFunc, visited map[grid.Cell]bool) []grid.Cell {
	var region []grid.Cell
	queue := []grid.Cell{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)

		for _, d := range []grid.Direction{grid.DirUp, grid.DirRight, grid.DirDown, grid.DirLeft} {
			n := current.Add(d.Delta())
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if visited[n] || !solid(n.X, n.Y) {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return region
}

// extractPerimeterEdges finds all exposed edges of a region
func extractPerimeterEdges(region []grid.Cell, index *grid.Index) []Edge {
	inRegion := make(map[grid.Cell]bool, len(region))
	for _, c := range region {
		inRegion[c] = true
	}

	half := index.CellSize / 2
	var edges []Edge
	for _, c := range region {
		box := Box(index.CellCenter(c), grid.Point{X: half, Y: half})
		for _, e := range BoxEdges(box) {
			if inRegion[c.Add(sideNeighbour(e.Side))] {
				continue
			}
			edges = append(edges, e)
		}
	}
	return edges
}

func sideNeighbour(side EdgeSide) grid.Cell {
	switch side {
	case SideTop:
		return grid.DirUp.Delta()
	case SideRight:
		return grid.DirRight.Delta()
	case SideBottom:
		return grid.DirDown.Delta()
	default:
		return grid.DirLeft.Delta()
	}
}

// mergeColinearEdges combines adjacent edges facing the same way
func mergeColinearEdges(edges []Edge) []Edge {
	merged := make([]bool, len(edges))
	var result []Edge

	for i := range edges {
		if merged[i] {
			continue
		}
		current := edges[i]
		merged[i] = true

		extended := true
		for extended {
			extended = false
			for j := range edges {
				if merged[j] {
					continue
				}
				if canMergeEdges(current, edges[j]) {
					current = mergeEdges(current, edges[j])
					merged[j] = true
					extended = true
					break
				}
			}
		}
		result = append(result, current)
	}
	return result
}

// canMergeEdges checks if two edges share a side, a line, and an endpoint
func canMergeEdges(a, b Edge) bool {
	if a.Side != b.Side {
		return false
	}
	const epsilon = 0.001

	switch a.Side {
	case SideTop, SideBottom:
		if abs(a.A.Y-b.A.Y) > epsilon {
			return false
		}
		return abs(a.B.X-b.A.X) < epsilon || abs(a.A.X-b.B.X) < epsilon
	case SideLeft, SideRight:
		if abs(a.A.X-b.A.X) > epsilon {
			return false
		}
		return abs(a.B.Y-b.A.Y) < epsilon || abs(a.A.Y-b.B.Y) < epsilon
	}
	return false
}

// mergeEdges joins two mergeable edges keeping the winding of a
func mergeEdges(a, b Edge) Edge {
	result := a
	switch a.Side {
	case SideTop:
		result.A.X = min(a.A.X, b.A.X)
		result.B.X = max(a.B.X, b.B.X)
	case SideBottom:
		result.A.X = max(a.A.X, b.A.X)
		result.B.X = min(a.B.X, b.B.X)
	case SideRight:
		result.A.Y = min(a.A.Y, b.A.Y)
		result.B.Y = max(a.B.Y, b.B.Y)
	case SideLeft:
		result.A.Y = max(a.A.Y, b.A.Y)
		result.B.Y = min(a.B.Y, b.B.Y)
	}
	return result
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
