package explore

// AllCodes selects the whole-dataset network instead of a single code.
const AllCodes = "ALL_CODES"

// Edge thickness and node size windows of the network views. The all-codes
// network keeps nodes smaller than the single-code view, which has far
// fewer of them.
const (
	edgeMinWidth      = 1.0
	edgeMaxWidth      = 32.0
	nodeMinSize       = 4.0
	nodeMaxSizeAll    = 32.0
	nodeMaxSizeSingle = 44.0
)

// Highlight colors for the user-selected code and its edges.
const (
	highlightNodeColor = "red"
	highlightEdgeColor = "lime"
)

// Node is one vertex of a rendered network.
type Node struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Title string  `json:"title,omitempty"`
	Level int     `json:"level"`
	Color string  `json:"color"`
	Shape string  `json:"shape"`
	Size  float64 `json:"size"`
}

// Edge is one weighted connection of a rendered network. Width is the
// normalized display thickness, Weight the underlying co-occurrence mass.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Color  string  `json:"color,omitempty"`
	Dashes bool    `json:"dashes,omitempty"`
}

// Graph is a network ready for rendering.
type Graph struct {
	Code  string `json:"code"`
	Level int    `json:"level,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// sizeByLevel fixes node sizes per hierarchy level in the all-codes view:
// the root is largest and sizes shrink towards the codes.
func sizeByLevel(level int) float64 {
	span := nodeMaxSizeAll - nodeMinSize
	switch level {
	case 0:
		return nodeMaxSizeAll
	case 1:
		return nodeMinSize + span*3/4
	case 2, 3:
		return nodeMinSize + span*2/4
	default:
		return nodeMinSize + span*1/4
	}
}

// shapeByLevel distinguishes hierarchy levels visually.
func shapeByLevel(level int) string {
	switch level {
	case 0:
		return "dot"
	case 1:
		return "triangleDown"
	case 2:
		return "square"
	case 3:
		return "star"
	default:
		return "dot"
	}
}

// scale maps v linearly from [vmin, vmax] into [lo, hi] with clamping.
// A degenerate input range lands in the middle of the output window.
func scale(v, vmin, vmax, lo, hi float64) float64 {
	if vmax <= vmin {
		return (lo + hi) / 2
	}
	out := lo + (v-vmin)*(hi-lo)/(vmax-vmin)
	if out < lo {
		return lo
	}
	if out > hi {
		return hi
	}
	return out
}
