package explore

import (
	"fmt"
	"sort"

	"github.com/pelingenc/coco/internal/domain/catalog"
	"github.com/pelingenc/coco/internal/domain/cooccur"
	"github.com/pelingenc/coco/internal/domain/dataset"
)

var resourceTypes = []string{catalog.ResourceICD, catalog.ResourceLOINC, catalog.ResourceOPS}

// AllCodesGraph builds the whole-dataset network: the strongest topN codes
// of every resource type, their hierarchy ancestors down to the requested
// level, the tree edges between them and the co-occurrence edges rolled up
// to that level. An optional highlight code is marked red together with its
// edges.
func AllCodesGraph(sess *dataset.Session, level, topN int, labels bool, highlight string) *Graph {
	m := sess.Matrix
	h := sess.Hierarchy

	inHierarchy := func(code string) bool {
		_, ok := h.Node(code)
		return ok
	}

	var selected []string
	for _, rt := range resourceTypes {
		rt := rt
		selected = append(selected, m.TopCodes(topN, func(code string) bool {
			return inHierarchy(code) && catalog.ResourceTypeOf(code) == rt
		})...)
	}
	sort.Strings(selected)

	sub := m.Sub(selected)
	codeEdges := cooccur.RollUpTo(cooccur.CodePairs(sub), h, level)
	treeEdges := h.TreeEdges(selected, level)
	nodeWeights := cooccur.NodeWeights(sub, h)

	// The highlight follows the roll-up: marking a code at level 2 marks
	// its chapter.
	highlightID := ""
	if highlight != "" {
		if id, ok := h.AncestorAt(highlight, level); ok {
			highlightID = id
		}
	}

	g := &Graph{Code: AllCodes, Level: level}

	nodeIDs := make(map[string]struct{})
	for _, e := range treeEdges {
		nodeIDs[e.Source] = struct{}{}
		nodeIDs[e.Target] = struct{}{}
	}
	for _, e := range codeEdges {
		nodeIDs[e.Source] = struct{}{}
		nodeIDs[e.Target] = struct{}{}
	}

	ids := make([]string, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n, ok := h.Node(id)
		if !ok {
			continue
		}
		node := Node{
			ID:    id,
			Level: n.Level,
			Color: catalog.Color(n.ResourceType),
			Shape: shapeByLevel(n.Level),
			Size:  sizeByLevel(n.Level),
		}
		if labels {
			node.Label = nodeLabel(sess, n)
		}
		node.Title = nodeTitle(sess, n)
		// Ancestor hovers carry the co-occurrence mass under the node.
		if n.Level < cooccur.LevelCode {
			if w := nodeWeights[id]; w > 0 {
				node.Title = fmt.Sprintf("%s (weight %g)", node.Title, w)
			}
		}
		if id == highlightID {
			node.Color = highlightNodeColor
		}
		g.Nodes = append(g.Nodes, node)
	}

	// Co-occurrence edge widths share one normalization window.
	wmin, wmax := weightRange(codeEdges)
	for _, e := range codeEdges {
		edge := Edge{
			From:   e.Source,
			To:     e.Target,
			Weight: e.Weight,
			Width:  scale(e.Weight, wmin, wmax, edgeMinWidth, edgeMaxWidth),
		}
		if highlightID != "" && (e.Source == highlightID || e.Target == highlightID) {
			edge.Color = highlightEdgeColor
		}
		g.Edges = append(g.Edges, edge)
	}
	for _, e := range treeEdges {
		g.Edges = append(g.Edges, Edge{
			From:   e.Source,
			To:     e.Target,
			Weight: e.Weight,
			Width:  edgeMinWidth,
			Dashes: true,
		})
	}

	return g
}

// SingleCodeGraph builds the neighborhood network of one code: its
// strongest co-occurring partner per resource type, each partner's topK
// neighbors and the connections among them. Node sizes follow connection
// degree.
func SingleCodeGraph(sess *dataset.Session, code string, topK int, labels bool) (*Graph, error) {
	m := sess.Matrix
	if !m.Has(code) {
		return nil, fmt.Errorf("code %q is not part of the dataset", code)
	}

	g := &Graph{Code: code}

	nodeIDs := map[string]struct{}{code: {}}
	seenEdges := make(map[[2]string]struct{})
	addEdge := func(from, to string, weight float64) {
		key := [2]string{from, to}
		if to < from {
			key = [2]string{to, from}
		}
		if _, dup := seenEdges[key]; dup {
			return
		}
		seenEdges[key] = struct{}{}
		nodeIDs[from] = struct{}{}
		nodeIDs[to] = struct{}{}
		g.Edges = append(g.Edges, Edge{From: from, To: to, Weight: weight})
	}

	// Spokes and neighbor edges first, then the damped cross-connections,
	// so a full-weight edge never loses to its halved duplicate.
	var cross []Edge
	for _, rt := range resourceTypes {
		rt := rt
		anchors := m.TopNeighbors(code, 1, func(c string) bool {
			return catalog.ResourceTypeOf(c) == rt
		})
		if len(anchors) == 0 {
			continue
		}
		anchor := anchors[0]
		addEdge(code, anchor.Code, anchor.Weight)

		neighbors := m.TopNeighbors(anchor.Code, topK, func(c string) bool {
			return c != code
		})
		for _, nb := range neighbors {
			addEdge(anchor.Code, nb.Code, nb.Weight)
		}
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				if w := m.At(neighbors[i].Code, neighbors[j].Code); w > 0 {
					cross = append(cross, Edge{From: neighbors[i].Code, To: neighbors[j].Code, Weight: w / 2})
				}
			}
		}
	}
	for _, e := range cross {
		addEdge(e.From, e.To, e.Weight)
	}

	ids := make([]string, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	degMin, degMax := connectionDegreeRange(m, ids)
	for _, id := range ids {
		node := Node{
			ID:    id,
			Level: cooccur.LevelCode,
			Color: catalog.Color(catalog.ResourceTypeOf(id)),
			Shape: "dot",
			Size:  scale(float64(m.ConnectionDegree(id)), degMin, degMax, nodeMinSize, nodeMaxSizeSingle),
		}
		if labels {
			node.Label = sess.Displays[id]
			if node.Label == "" {
				node.Label = id
			}
		}
		if t := sess.FullDisplays[id]; t != "" {
			node.Title = t
		} else {
			node.Title = id
		}
		if id == code {
			node.Color = highlightNodeColor
		}
		g.Nodes = append(g.Nodes, node)
	}

	wmin, wmax := 0.0, 0.0
	for i, e := range g.Edges {
		if i == 0 || e.Weight < wmin {
			wmin = e.Weight
		}
		if i == 0 || e.Weight > wmax {
			wmax = e.Weight
		}
	}
	for i := range g.Edges {
		g.Edges[i].Width = scale(g.Edges[i].Weight, wmin, wmax, edgeMinWidth, edgeMaxWidth)
	}

	return g, nil
}

// CodesOfInterest is the node set of the single-code view: the code, its
// per-resource-type anchors and their topK neighbors. The dendrogram and
// the frequency chart run over the same set.
func CodesOfInterest(sess *dataset.Session, code string, topK int) ([]string, error) {
	m := sess.Matrix
	if !m.Has(code) {
		return nil, fmt.Errorf("code %q is not part of the dataset", code)
	}

	set := map[string]struct{}{code: {}}
	for _, rt := range resourceTypes {
		rt := rt
		anchors := m.TopNeighbors(code, 1, func(c string) bool {
			return catalog.ResourceTypeOf(c) == rt
		})
		if len(anchors) == 0 {
			continue
		}
		set[anchors[0].Code] = struct{}{}
		for _, nb := range m.TopNeighbors(anchors[0].Code, topK, func(c string) bool { return c != code }) {
			set[nb.Code] = struct{}{}
		}
	}

	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

func nodeLabel(sess *dataset.Session, n *cooccur.Node) string {
	if n.Level == cooccur.LevelCode {
		if d := sess.Displays[n.ID]; d != "" {
			return d
		}
		return n.ID
	}
	return dataset.TruncateDisplay(n.Label)
}

func nodeTitle(sess *dataset.Session, n *cooccur.Node) string {
	if n.Level == cooccur.LevelCode {
		if d := sess.FullDisplays[n.ID]; d != "" {
			return d
		}
		return n.ID
	}
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func weightRange(pairs []cooccur.Pair) (float64, float64) {
	var wmin, wmax float64
	for i, p := range pairs {
		if i == 0 || p.Weight < wmin {
			wmin = p.Weight
		}
		if i == 0 || p.Weight > wmax {
			wmax = p.Weight
		}
	}
	return wmin, wmax
}

func connectionDegreeRange(m *cooccur.Matrix, ids []string) (float64, float64) {
	var dmin, dmax float64
	for i, id := range ids {
		d := float64(m.ConnectionDegree(id))
		if i == 0 || d < dmin {
			dmin = d
		}
		if i == 0 || d > dmax {
			dmax = d
		}
	}
	return dmin, dmax
}
