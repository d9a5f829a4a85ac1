package explore

import (
	"github.com/pelingenc/coco/internal/domain/dataset"
)

// Bounds for the user-tunable view parameters.
const (
	MinLevel = 1
	MaxLevel = 4

	MinNeighbors = 1
	MaxNeighbors = 10

	DefaultTopN      = 5
	DefaultLevel     = MaxLevel
	DefaultNeighbors = 5
)

// GraphParams selects and shapes a network view.
type GraphParams struct {
	Code      string
	Level     int
	TopN      int
	Neighbors int
	Labels    bool
	Highlight string
}

// ChartsResponse bundles the two analytical views of a code neighborhood.
// A failed clustering does not suppress the bar chart; its reason lands in
// DendrogramError instead.
type ChartsResponse struct {
	Code            string         `json:"code"`
	Bars            []FrequencyBar `json:"bars"`
	Dendrogram      *Dendrogram    `json:"dendrogram,omitempty"`
	DendrogramError string         `json:"dendrogram_error,omitempty"`
}

// Service renders networks and charts from uploaded sessions.
type Service struct {
	store *dataset.Store
}

func NewService(store *dataset.Store) *Service {
	return &Service{store: store}
}

// Graph builds the network for a session, either the all-codes overview or
// the neighborhood of one code.
func (s *Service) Graph(id string, p GraphParams) (*Graph, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	p = p.normalized()
	if p.Code == AllCodes {
		return AllCodesGraph(sess, p.Level, p.TopN, p.Labels, p.Highlight), nil
	}
	return SingleCodeGraph(sess, p.Code, p.Neighbors, p.Labels)
}

// Charts builds the frequency bar chart and the Ward dendrogram for a
// session. For the all-codes view both run over the top codes per resource
// type; for a single code they run over its neighborhood.
func (s *Service) Charts(id string, p GraphParams) (*ChartsResponse, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	p = p.normalized()
	var codes []string
	selected := ""
	if p.Code == AllCodes {
		codes = topCodesOfInterest(sess.Matrix, sess.Hierarchy, p.TopN)
	} else {
		selected = p.Code
		codes, err = CodesOfInterest(sess, p.Code, p.Neighbors)
		if err != nil {
			return nil, err
		}
	}

	resp := &ChartsResponse{
		Code: p.Code,
		Bars: FrequencyChart(sess, codes, selected),
	}

	dendro, err := BuildDendrogram(sess.Matrix.Sub(codes))
	if err != nil {
		resp.DendrogramError = err.Error()
	} else {
		resp.Dendrogram = dendro
	}
	return resp, nil
}

// normalized fills defaults and clamps the tunables into range.
func (p GraphParams) normalized() GraphParams {
	if p.Code == "" {
		p.Code = AllCodes
	}
	if p.Level == 0 {
		p.Level = DefaultLevel
	}
	p.Level = clampInt(p.Level, MinLevel, MaxLevel)
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}
	if p.Neighbors == 0 {
		p.Neighbors = DefaultNeighbors
	}
	p.Neighbors = clampInt(p.Neighbors, MinNeighbors, MaxNeighbors)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
