package track

import (
	"fmt"
	"sort"
)

// Built-in track layouts. '#' asphalt, '~' gravel, '.' nothing, 'S' start,
// 'F' target.
var layouts = map[string]string{
	// A straight run with gravel shoulders.
	"sprint": `
..................
~~~~~~~~~~~~~~~~~~
####S#########F###
####..########.###
~~~~~~~~~~~~~~~~~~
..................
`,
	// A wide oval with a gravel infield.
	"oval": `
......................
.####################.
.####################.
.###~~~~~~~~~~~~~~###.
.###~~~~~~~~~~~~~~###.
.###~~~~~~~~~~~~~~###.
.S##~~~~~~~~~~~~~~##F.
.###~~~~~~~~~~~~~~###.
.####################.
.####################.
......................
`,
	// A dogleg right with a tight inside line.
	"dogleg": `
....................
.########...........
.S#######...........
.########...........
.....####~~.........
.....####~~.........
.....############F..
.....#############..
....................
`,
}

// ByName returns one of the built-in tracks.
func ByName(name string) (*Track, error) {
	layout, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown track %q", name)
	}
	return Parse(name, layout)
}

// Names lists the built-in track names, sorted.
func Names() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
