package cooccur

import "sort"

// Pair is a weighted, undirected edge between two hierarchy nodes. Level is
// the hierarchy level of its endpoints.
type Pair struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Level  int     `json:"level"`
}

// CodePairs extracts the non-zero upper-triangle edges of a co-occurrence
// matrix as level-4 pairs.
func CodePairs(m *Matrix) []Pair {
	var pairs []Pair
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if w := m.Data[i][j]; w > 0 {
				pairs = append(pairs, Pair{
					Source: m.Codes[i],
					Target: m.Codes[j],
					Weight: w,
					Level:  LevelCode,
				})
			}
		}
	}
	return pairs
}

// RollUp translates pairs one hierarchy level up: both endpoints are
// replaced by their parents, edges with an endpoint outside the hierarchy
// are dropped, parallel edges are aggregated by weight sum and self loops
// (both endpoints sharing the parent) vanish.
func RollUp(pairs []Pair, h *Hierarchy) []Pair {
	if len(pairs) == 0 {
		return nil
	}
	level := pairs[0].Level - 1

	type key struct{ a, b string }
	agg := make(map[key]float64)
	for _, p := range pairs {
		pa, ok := h.Parent(p.Source)
		if !ok {
			continue
		}
		pb, ok := h.Parent(p.Target)
		if !ok {
			continue
		}
		if pa == pb {
			continue
		}
		if pa > pb {
			pa, pb = pb, pa
		}
		agg[key{pa, pb}] += p.Weight
	}

	out := make([]Pair, 0, len(agg))
	for k, w := range agg {
		out = append(out, Pair{Source: k.a, Target: k.b, Weight: w, Level: level})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// RollUpTo repeats RollUp until the pairs sit at the requested level.
func RollUpTo(pairs []Pair, h *Hierarchy, level int) []Pair {
	for len(pairs) > 0 && pairs[0].Level > level {
		pairs = RollUp(pairs, h)
	}
	return pairs
}

// NodeWeights computes a display weight for every hierarchy node reachable
// from the matrix vocabulary: codes carry their weighted degree and every
// higher level accumulates the sum of its children, so chapter and group
// nodes reflect the co-occurrence mass below them.
func NodeWeights(m *Matrix, h *Hierarchy) map[string]float64 {
	weights := make(map[string]float64)
	for _, code := range m.Codes {
		if _, ok := h.Node(code); !ok {
			continue
		}
		weights[code] = m.WeightedDegree(code)
	}

	for level := LevelCode; level > LevelRoot; level-- {
		for _, n := range h.NodesAtLevel(level) {
			w, ok := weights[n.ID]
			if !ok {
				continue
			}
			if pid, ok := h.Parent(n.ID); ok {
				weights[pid] += w
			}
		}
	}

	return weights
}
