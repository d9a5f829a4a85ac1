package explore

import (
	"fmt"
	"math"

	"github.com/pelingenc/coco/internal/domain/cooccur"
)

// Merge is one agglomeration step. Leaves carry ids 0..n-1, the cluster
// formed by step i carries id n+i.
type Merge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Distance float64 `json:"distance"`
	Size     int     `json:"size"`
}

// Dendrogram is the Ward clustering of a code set, laid out for plotting:
// Leaves holds the display order, each bracket i connects the X positions
// of its two children at height Merges[i].Distance.
type Dendrogram struct {
	Leaves []string    `json:"leaves"`
	Merges []Merge     `json:"merges"`
	X      [][]float64 `json:"x"`
	Y      [][]float64 `json:"y"`
}

// BuildDendrogram clusters the rows of the similarity product S*S^T under
// Euclidean distance with Ward linkage, where S is the co-occurrence
// sub-matrix of the given codes.
func BuildDendrogram(sub *cooccur.Matrix) (*Dendrogram, error) {
	n := sub.Len()
	if n < 2 {
		return nil, fmt.Errorf("clustering needs at least 2 codes, got %d", n)
	}

	points := similarityRows(sub)

	// Squared pairwise distances, updated in place by Lance-Williams.
	dist := make([][]float64, 2*n-1)
	for i := range dist {
		dist[i] = make([]float64, 2*n-1)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqDist(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	size := make([]int, 2*n-1)
	active := make([]int, 0, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		active = append(active, i)
	}

	type children struct{ a, b int }
	childOf := make(map[int]children, n-1)
	merges := make([]Merge, 0, n-1)

	for step := 0; step < n-1; step++ {
		// Closest active pair, smallest ids win ties so the result is
		// stable for equal distances.
		bi, bj := -1, -1
		best := math.Inf(1)
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				i, j := active[x], active[y]
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		id := n + step
		size[id] = size[bi] + size[bj]
		childOf[id] = children{bi, bj}
		merges = append(merges, Merge{A: bi, B: bj, Distance: math.Sqrt(best), Size: size[id]})

		// Ward update of the squared distance from every other cluster
		// to the new one.
		for _, k := range active {
			if k == bi || k == bj {
				continue
			}
			ni, nj, nk := float64(size[bi]), float64(size[bj]), float64(size[k])
			d := ((ni+nk)*dist[k][bi] + (nj+nk)*dist[k][bj] - nk*best) / (ni + nj + nk)
			dist[k][id] = d
			dist[id][k] = d
		}

		next := active[:0]
		for _, k := range active {
			if k != bi && k != bj {
				next = append(next, k)
			}
		}
		active = append(next, id)
	}

	// Leaf display order by depth-first traversal of the final cluster.
	order := make([]int, 0, n)
	var walk func(id int)
	walk = func(id int) {
		if id < n {
			order = append(order, id)
			return
		}
		c := childOf[id]
		walk(c.a)
		walk(c.b)
	}
	walk(2*n - 2)

	leaves := make([]string, n)
	leafX := make(map[int]float64, n)
	for pos, id := range order {
		leaves[pos] = sub.Codes[id]
		leafX[id] = 5 + 10*float64(pos)
	}

	d := &Dendrogram{Leaves: leaves, Merges: merges}

	// Bracket coordinates: each merge draws a U between the X positions
	// of its children, rising from their own heights to the merge height.
	clusterX := make(map[int]float64, n-1)
	clusterH := make(map[int]float64, n-1)
	for i, mg := range merges {
		id := n + i
		xa, ha := coord(mg.A, n, leafX, clusterX, clusterH)
		xb, hb := coord(mg.B, n, leafX, clusterX, clusterH)
		d.X = append(d.X, []float64{xa, xa, xb, xb})
		d.Y = append(d.Y, []float64{ha, mg.Distance, mg.Distance, hb})
		clusterX[id] = (xa + xb) / 2
		clusterH[id] = mg.Distance
	}

	return d, nil
}

func coord(id, n int, leafX, clusterX, clusterH map[int]float64) (x, h float64) {
	if id < n {
		return leafX[id], 0
	}
	return clusterX[id], clusterH[id]
}

// similarityRows embeds each code as its row of S*S^T: two codes land
// close together when they co-occur with the same partners.
func similarityRows(sub *cooccur.Matrix) [][]float64 {
	n := sub.Len()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += sub.Data[i][k] * sub.Data[j][k]
			}
			rows[i][j] = s
		}
	}
	return rows
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
