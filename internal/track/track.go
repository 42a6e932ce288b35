// Package track models the tile grid a race runs on and implements the
// terrain evaluator the search engine consumes.
package track

import (
	"fmt"
	"strings"

	"github.com/gridrace/api/internal/engine"
)

// Tile is one grid cell's surface.
type Tile int8

const (
	// TileNone is a cell with no surface painted: off the track entirely.
	TileNone Tile = iota
	TileAsphalt
	TileGravel
)

// Track is an immutable tile grid with a start cell and a target cell.
type Track struct {
	Name   string
	width  int
	height int
	tiles  []Tile
	start  engine.Vec
	target engine.Vec
}

// Legend for ASCII track layouts.
const (
	charAsphalt = '#'
	charGravel  = '~'
	charNone    = '.'
	charStart   = 'S' // start cell, asphalt underneath
	charTarget  = 'F' // target cell, asphalt underneath
)

// Parse builds a track from an ASCII layout. Rows may have ragged lengths;
// missing cells read as no surface. The layout must contain exactly one
// start and one target cell.
func Parse(name, layout string) (*Track, error) {
	lines := strings.Split(strings.Trim(layout, "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && strings.TrimSpace(lines[0]) == "") {
		return nil, fmt.Errorf("track %q: empty layout", name)
	}

	height := len(lines)
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}

	t := &Track{
		Name:   name,
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
		start:  engine.Vec{X: -1, Y: -1},
		target: engine.Vec{X: -1, Y: -1},
	}

	for y, line := range lines {
		for x, ch := range line {
			var tile Tile
			switch ch {
			case charAsphalt:
				tile = TileAsphalt
			case charGravel:
				tile = TileGravel
			case charNone, ' ':
				tile = TileNone
			case charStart:
				if t.start.X >= 0 {
					return nil, fmt.Errorf("track %q: multiple start cells", name)
				}
				t.start = engine.Vec{X: x, Y: y}
				tile = TileAsphalt
			case charTarget:
				if t.target.X >= 0 {
					return nil, fmt.Errorf("track %q: multiple target cells", name)
				}
				t.target = engine.Vec{X: x, Y: y}
				tile = TileAsphalt
			default:
				return nil, fmt.Errorf("track %q: unknown tile %q at (%d,%d)", name, ch, x, y)
			}
			t.tiles[y*width+x] = tile
		}
	}

	if t.start.X < 0 {
		return nil, fmt.Errorf("track %q: no start cell", name)
	}
	if t.target.X < 0 {
		return nil, fmt.Errorf("track %q: no target cell", name)
	}
	return t, nil
}

// At returns the tile at a position. Anything outside the grid reads as no
// surface, so evaluators degrade gracefully on unmapped regions.
func (t *Track) At(p engine.Vec) Tile {
	if p.X < 0 || p.Y < 0 || p.X >= t.width || p.Y >= t.height {
		return TileNone
	}
	return t.tiles[p.Y*t.width+p.X]
}

// Width returns the grid width.
func (t *Track) Width() int { return t.width }

// Height returns the grid height.
func (t *Track) Height() int { return t.height }

// Start returns the start cell.
func (t *Track) Start() engine.Vec { return t.start }

// Target returns the target cell.
func (t *Track) Target() engine.Vec { return t.target }
