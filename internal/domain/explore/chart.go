package explore

import (
	"sort"

	"github.com/pelingenc/coco/internal/domain/catalog"
	"github.com/pelingenc/coco/internal/domain/cooccur"
	"github.com/pelingenc/coco/internal/domain/dataset"
)

// FrequencyBar is one bar of the relative-frequency chart.
type FrequencyBar struct {
	Code      string  `json:"code"`
	Display   string  `json:"display,omitempty"`
	Frequency float64 `json:"frequency"`
	Selected  bool    `json:"selected"`
}

// FrequencyChart computes the share each code holds of the dataset's total
// co-occurrence weight. Bars are sorted by code; the selected code is
// flagged so the front end can color it apart.
func FrequencyChart(sess *dataset.Session, codes []string, selected string) []FrequencyBar {
	m := sess.Matrix
	total := m.TotalWeight()

	seen := make(map[string]struct{}, len(codes))
	bars := make([]FrequencyBar, 0, len(codes))
	for _, code := range codes {
		if _, dup := seen[code]; dup || !m.Has(code) {
			continue
		}
		seen[code] = struct{}{}

		var freq float64
		if total > 0 {
			freq = m.WeightedDegree(code) / total
		}
		bars = append(bars, FrequencyBar{
			Code:      code,
			Display:   sess.FullDisplays[code],
			Frequency: freq,
			Selected:  code == selected,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Code < bars[j].Code })
	return bars
}

// topCodesOfInterest is the bar-chart code set of the all-codes view: the
// same per-resource-type selection the network shows.
func topCodesOfInterest(m *cooccur.Matrix, h *cooccur.Hierarchy, topN int) []string {
	var selected []string
	for _, rt := range resourceTypes {
		rt := rt
		selected = append(selected, m.TopCodes(topN, func(code string) bool {
			if _, ok := h.Node(code); !ok {
				return false
			}
			return catalog.ResourceTypeOf(code) == rt
		})...)
	}
	sort.Strings(selected)
	return selected
}
