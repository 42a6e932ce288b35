package engine

// moveDeltas is the fixed set of nine legal acceleration adjustments: no
// change plus the eight cardinal/diagonal unit tweaks. The order is fixed so
// two runs over identical inputs generate children identically.
var moveDeltas = [9]Vec{
	{0, 0},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// candidate is one pre-pruning child move.
type candidate struct {
	velocity Vec
	position Vec
}

// candidateMoves generates the nine candidate (velocity, position) pairs
// reachable from a node in one turn.
func candidateMoves(position, velocity Vec) [9]candidate {
	var out [9]candidate
	for i, d := range moveDeltas {
		v := velocity.Add(d)
		out[i] = candidate{velocity: v, position: position.Add(v)}
	}
	return out
}
