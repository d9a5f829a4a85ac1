package cooccur

import (
	"sort"

	"github.com/pelingenc/coco/internal/domain/catalog"
)

// Hierarchy levels. Every dataset code hangs off the FHIR root through its
// resource type, catalog chapter and catalog group.
const (
	LevelRoot         = 0
	LevelResourceType = 1
	LevelChapter      = 2
	LevelGroup        = 3
	LevelCode         = 4
)

// RootID is the synthetic top node every resource type attaches to.
const RootID = "FHIR"

// Node is one vertex of the catalog hierarchy.
type Node struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Level        int    `json:"level"`
	ResourceType string `json:"resource_type"`
}

// Hierarchy indexes the ancestor chain of every dataset code. Chapter ids
// are prefixed with the lowercase resource type ("icd4", "ops5") because the
// ICD and OPS exports both number their chapters.
type Hierarchy struct {
	nodes    map[string]*Node
	parent   map[string]string
	children map[string]map[string]struct{}
}

// BuildHierarchy assembles the hierarchy for the given code lineages.
// Lineages sharing a group or chapter converge on the same node.
func BuildHierarchy(lineages []*catalog.Lineage) *Hierarchy {
	h := &Hierarchy{
		nodes:    make(map[string]*Node),
		parent:   make(map[string]string),
		children: make(map[string]map[string]struct{}),
	}
	h.addNode(&Node{ID: RootID, Label: RootID, Level: LevelRoot})

	for _, l := range lineages {
		if l == nil {
			continue
		}
		typeID := l.ResourceType
		chapterID := chapterNodeID(l)
		groupID := l.GroupCode

		h.addNode(&Node{ID: typeID, Label: typeID, Level: LevelResourceType, ResourceType: l.ResourceType})
		h.addNode(&Node{ID: chapterID, Label: l.ChapterName, Level: LevelChapter, ResourceType: l.ResourceType})
		h.addNode(&Node{ID: groupID, Label: l.GroupName, Level: LevelGroup, ResourceType: l.ResourceType})
		h.addNode(&Node{ID: l.Code, Label: l.Name, Level: LevelCode, ResourceType: l.ResourceType})

		h.link(RootID, typeID)
		h.link(typeID, chapterID)
		h.link(chapterID, groupID)
		h.link(groupID, l.Code)
	}

	return h
}

func chapterNodeID(l *catalog.Lineage) string {
	switch l.ResourceType {
	case catalog.ResourceICD:
		return "icd" + l.ChapterCode
	case catalog.ResourceOPS:
		return "ops" + l.ChapterCode
	default:
		return l.ChapterCode
	}
}

func (h *Hierarchy) addNode(n *Node) {
	if _, ok := h.nodes[n.ID]; !ok {
		h.nodes[n.ID] = n
	}
}

func (h *Hierarchy) link(parent, child string) {
	h.parent[child] = parent
	set, ok := h.children[parent]
	if !ok {
		set = make(map[string]struct{})
		h.children[parent] = set
	}
	set[child] = struct{}{}
}

// Node returns the node with the given id.
func (h *Hierarchy) Node(id string) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Parent returns the parent id of a node.
func (h *Hierarchy) Parent(id string) (string, bool) {
	p, ok := h.parent[id]
	return p, ok
}

// AncestorAt walks up from a node until the requested level is reached.
// Asking for the node's own level returns the node itself.
func (h *Hierarchy) AncestorAt(id string, level int) (string, bool) {
	n, ok := h.nodes[id]
	if !ok {
		return "", false
	}
	for n.Level > level {
		pid, ok := h.parent[n.ID]
		if !ok {
			return "", false
		}
		n, ok = h.nodes[pid]
		if !ok {
			return "", false
		}
	}
	if n.Level != level {
		return "", false
	}
	return n.ID, true
}

// ChildCount returns the number of direct children of a node.
func (h *Hierarchy) ChildCount(id string) int {
	return len(h.children[id])
}

// Children returns the sorted direct children of a node.
func (h *Hierarchy) Children(id string) []string {
	set := h.children[id]
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// NodesAtLevel returns the nodes of one level, sorted by id.
func (h *Hierarchy) NodesAtLevel(level int) []*Node {
	var out []*Node
	for _, n := range h.nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TreeEdges returns the parent→child edges between consecutive levels from
// the root down to maxLevel, restricted to ancestors of the given codes.
// Edge weights carry the child count of the child node, so thicker branches
// hold more of the dataset underneath them.
func (h *Hierarchy) TreeEdges(codes []string, maxLevel int) []Pair {
	keep := make(map[string]struct{})
	for _, code := range codes {
		id := code
		for {
			if _, seen := keep[id]; seen {
				break
			}
			keep[id] = struct{}{}
			pid, ok := h.parent[id]
			if !ok {
				break
			}
			id = pid
		}
	}

	var edges []Pair
	for child, parent := range h.parent {
		cn, ok := h.nodes[child]
		if !ok || cn.Level > maxLevel {
			continue
		}
		if _, ok := keep[child]; !ok {
			continue
		}
		weight := float64(h.ChildCount(child))
		if weight == 0 {
			weight = 1
		}
		edges = append(edges, Pair{Source: parent, Target: child, Weight: weight, Level: cn.Level})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
