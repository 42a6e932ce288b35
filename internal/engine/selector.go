package engine

// scoreEpsilon is the tolerance for aggregate comparisons, so selection is
// stable against float noise and deterministic across runs.
const scoreEpsilon = 1e-9

// collectPaths walks a finished tree and materializes every root-to-leaf
// sequence. Viable paths end at a leaf whose every node survived pruning; a
// path whose last node has children that were all pruned is viable but
// flagged as a dead end. Paths ending in a pruned node are returned
// separately for the total-pruning fallback.
func collectPaths(root *PathNode) (viable, pruned []Path) {
	if root == nil {
		return nil, nil
	}
	walkPaths(root, nil, &viable, &pruned)
	return viable, pruned
}

func walkPaths(n *PathNode, prefix []*PathNode, viable, pruned *[]Path) {
	for _, c := range n.Children {
		p := make([]*PathNode, len(prefix)+1)
		copy(p, prefix)
		p[len(prefix)] = c

		if !c.Viable {
			*pruned = append(*pruned, newPath(p, false))
			continue
		}
		if len(c.Children) == 0 {
			*viable = append(*viable, newPath(p, false))
			continue
		}
		anyViable := false
		for _, g := range c.Children {
			if g.Viable {
				anyViable = true
				break
			}
		}
		if !anyViable {
			*viable = append(*viable, newPath(p, true))
		}
		walkPaths(c, p, viable, pruned)
	}
}

// selectBest picks the winning path: highest average score, with min node
// score as the weakest-link tie-break, then fewer direction changes, then
// dead-end-free, then fewer off-track nodes. Ties keep the earliest
// generated path so selection stays deterministic.
func selectBest(paths []Path) Path {
	best := paths[0]
	for _, p := range paths[1:] {
		if comparePaths(p, best) > 0 {
			best = p
		}
	}
	return best
}

// comparePaths returns >0 when a ranks strictly better than b.
func comparePaths(a, b Path) int {
	if d := compareScore(a.AverageScore, b.AverageScore); d != 0 {
		return d
	}
	if d := compareScore(a.MinNodeScore, b.MinNodeScore); d != 0 {
		return d
	}
	if a.DirectionChanges != b.DirectionChanges {
		if a.DirectionChanges < b.DirectionChanges {
			return 1
		}
		return -1
	}
	if a.HasDeadEnd != b.HasDeadEnd {
		if !a.HasDeadEnd {
			return 1
		}
		return -1
	}
	if a.OffTrackNodeCount != b.OffTrackNodeCount {
		if a.OffTrackNodeCount < b.OffTrackNodeCount {
			return 1
		}
		return -1
	}
	return 0
}

func compareScore(a, b float64) int {
	if a > b+scoreEpsilon {
		return 1
	}
	if a < b-scoreEpsilon {
		return -1
	}
	return 0
}

// selectFallback picks the least-bad pruned path: highest min node score
// first, so the branch that came closest to surviving wins, then average.
func selectFallback(paths []Path) Path {
	best := paths[0]
	for _, p := range paths[1:] {
		if d := compareScore(p.MinNodeScore, best.MinNodeScore); d > 0 ||
			(d == 0 && compareScore(p.AverageScore, best.AverageScore) > 0) {
			best = p
		}
	}
	return best
}
