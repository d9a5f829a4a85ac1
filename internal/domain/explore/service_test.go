package explore

import (
	"errors"
	"testing"
	"time"

	"github.com/pelingenc/coco/internal/domain/catalog"
	"github.com/pelingenc/coco/internal/domain/cooccur"
	"github.com/pelingenc/coco/internal/domain/dataset"
)

// singleCodeSession holds exactly one code, too few to cluster.
func singleCodeSession(t *testing.T) *dataset.Session {
	t.Helper()
	m := cooccur.Build([]cooccur.Observation{{PatientID: 1, Code: "E11.9"}})
	lineage := &catalog.Lineage{
		Code: "E11.9", Name: "Diabetes mellitus Typ 2", ResourceType: catalog.ResourceICD,
		GroupCode: "E10-E14", GroupName: "Diabetes mellitus",
		ChapterCode: "4", ChapterName: "Endokrine Krankheiten",
	}
	return &dataset.Session{
		Summary:      dataset.Summary{ID: "single-code", CreatedAt: time.Now()},
		Codes:        m.Codes,
		Matrix:       m,
		Hierarchy:    cooccur.BuildHierarchy([]*catalog.Lineage{lineage}),
		Displays:     map[string]string{"E11.9": "Diabetes me..."},
		FullDisplays: map[string]string{"E11.9": "Diabetes mellitus Typ 2"},
	}
}

func newTestExploreService(t *testing.T) (*Service, *dataset.Session) {
	t.Helper()
	store := dataset.NewStore(4)
	sess := newTestSession(t)
	store.Put(sess)
	return NewService(store), sess
}

func TestServiceGraph_AllCodesDefaults(t *testing.T) {
	svc, sess := newTestExploreService(t)

	// An empty code selects the all-codes view at the deepest level.
	g, err := svc.Graph(sess.Summary.ID, GraphParams{Labels: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Code != AllCodes || g.Level != MaxLevel {
		t.Errorf("defaults not applied: code=%q level=%d", g.Code, g.Level)
	}
	if len(g.Nodes) == 0 || len(g.Edges) == 0 {
		t.Error("expected a populated graph")
	}
}

func TestServiceGraph_SingleCode(t *testing.T) {
	svc, sess := newTestExploreService(t)

	g, err := svc.Graph(sess.Summary.ID, GraphParams{Code: "E11.9", Labels: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Code != "E11.9" {
		t.Errorf("graph code = %q", g.Code)
	}

	if _, err := svc.Graph(sess.Summary.ID, GraphParams{Code: "Z99.9"}); err == nil {
		t.Error("expected error for a code outside the dataset")
	}
}

func TestServiceGraph_UnknownSession(t *testing.T) {
	svc, _ := newTestExploreService(t)
	if _, err := svc.Graph("missing", GraphParams{}); !errors.Is(err, dataset.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceCharts_SingleCode(t *testing.T) {
	svc, sess := newTestExploreService(t)

	resp, err := svc.Charts(sess.Summary.ID, GraphParams{Code: "E11.9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != "E11.9" || len(resp.Bars) == 0 {
		t.Errorf("unexpected charts response: %+v", resp)
	}
	if resp.Dendrogram == nil || resp.DendrogramError != "" {
		t.Errorf("expected a dendrogram, got error %q", resp.DendrogramError)
	}
	for _, b := range resp.Bars {
		if b.Selected && b.Code != "E11.9" {
			t.Errorf("wrong bar selected: %+v", b)
		}
	}
}

func TestServiceCharts_AllCodes(t *testing.T) {
	svc, sess := newTestExploreService(t)

	resp, err := svc.Charts(sess.Summary.ID, GraphParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != AllCodes || len(resp.Bars) != 5 {
		t.Errorf("unexpected charts response: %+v", resp)
	}
	for _, b := range resp.Bars {
		if b.Selected {
			t.Errorf("no bar may be selected in the all-codes view: %+v", b)
		}
	}
}

func TestServiceCharts_DendrogramFailureKeepsBars(t *testing.T) {
	store := dataset.NewStore(4)
	sess := singleCodeSession(t)
	store.Put(sess)
	svc := NewService(store)

	resp, err := svc.Charts(sess.Summary.ID, GraphParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DendrogramError == "" || resp.Dendrogram != nil {
		t.Errorf("expected a dendrogram error, got %+v", resp)
	}
	if len(resp.Bars) != 1 {
		t.Errorf("bar chart must survive a failed clustering: %+v", resp.Bars)
	}
}

func TestGraphParamsNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   GraphParams
		want GraphParams
	}{
		{"empty", GraphParams{},
			GraphParams{Code: AllCodes, Level: MaxLevel, TopN: DefaultTopN, Neighbors: DefaultNeighbors}},
		{"clamped high", GraphParams{Code: "E11.9", Level: 9, TopN: 3, Neighbors: 99},
			GraphParams{Code: "E11.9", Level: MaxLevel, TopN: 3, Neighbors: MaxNeighbors}},
		{"clamped low", GraphParams{Level: -1, TopN: -5, Neighbors: -2},
			GraphParams{Code: AllCodes, Level: MinLevel, TopN: DefaultTopN, Neighbors: MinNeighbors}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.normalized()
			if got != tt.want {
				t.Errorf("normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
