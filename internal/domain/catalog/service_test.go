package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// =========== Mock Repositories ===========

type mockICDRepo struct {
	store map[string]*ICDEntry
}

func newMockICDRepo() *mockICDRepo {
	m := &mockICDRepo{store: make(map[string]*ICDEntry)}
	m.store["E11.9"] = &ICDEntry{Code: "E11.9", Name: "Diabetes mellitus Typ 2: ohne Komplikationen", GroupCode: "E10-E14", GroupName: "Diabetes mellitus", ChapterCode: "4", ChapterName: "Endokrine Krankheiten"}
	m.store["I10.00"] = &ICDEntry{Code: "I10.00", Name: "Essentielle Hypertonie: benigne", GroupCode: "I10-I15", GroupName: "Hypertonie", ChapterCode: "9", ChapterName: "Krankheiten des Kreislaufsystems"}
	return m
}

func (m *mockICDRepo) Search(_ context.Context, query string, limit int) ([]*ICDEntry, error) {
	var results []*ICDEntry
	q := strings.ToLower(query)
	for _, e := range m.store {
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *mockICDRepo) GetByCode(_ context.Context, code string) (*ICDEntry, error) {
	e, ok := m.store[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return e, nil
}

func (m *mockICDRepo) Count() int { return len(m.store) }

type mockOPSRepo struct {
	store map[string]*OPSEntry
}

func newMockOPSRepo() *mockOPSRepo {
	m := &mockOPSRepo{store: make(map[string]*OPSEntry)}
	m.store["5-470"] = &OPSEntry{Code: "5-470", Name: "Appendektomie: offen chirurgisch", GroupCode: "5-42...5-54", GroupName: "Operationen am Verdauungstrakt", ChapterCode: "5", ChapterName: "Operationen"}
	return m
}

func (m *mockOPSRepo) Search(_ context.Context, query string, limit int) ([]*OPSEntry, error) {
	var results []*OPSEntry
	q := strings.ToLower(query)
	for _, e := range m.store {
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *mockOPSRepo) GetByCode(_ context.Context, code string) (*OPSEntry, error) {
	e, ok := m.store[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return e, nil
}

func (m *mockOPSRepo) Count() int { return len(m.store) }

type mockLOINCRepo struct {
	store map[string]*LOINCEntry
}

func newMockLOINCRepo() *mockLOINCRepo {
	m := &mockLOINCRepo{store: make(map[string]*LOINCEntry)}
	m.store["718-7"] = &LOINCEntry{Code: "718-7", Name: "Hemoglobin [Mass/volume] in Blood", Property: "MCnc", System: "Bld"}
	return m
}

func (m *mockLOINCRepo) Search(_ context.Context, query string, limit int) ([]*LOINCEntry, error) {
	var results []*LOINCEntry
	q := strings.ToLower(query)
	for _, e := range m.store {
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *mockLOINCRepo) GetByCode(_ context.Context, code string) (*LOINCEntry, error) {
	e, ok := m.store[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return e, nil
}

func (m *mockLOINCRepo) Count() int { return len(m.store) }

func newTestService() *Service {
	return NewService(newMockICDRepo(), newMockOPSRepo(), newMockLOINCRepo())
}

// =========== Resource type inference ===========

func TestResourceTypeOf(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"E11.9", ResourceICD},
		{"I10.00", ResourceICD},
		{"718-7", ResourceLOINC},
		{"2093-3", ResourceLOINC},
		{"5-470", ResourceOPS},
		{"1-632", ResourceOPS},
		{"", ResourceUnknown},
		{"12345", ResourceUnknown},
	}
	for _, tc := range cases {
		if got := ResourceTypeOf(tc.code); got != tc.want {
			t.Errorf("ResourceTypeOf(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestColor(t *testing.T) {
	if Color(ResourceICD) != "#00bfff" {
		t.Error("unexpected ICD color")
	}
	if Color(ResourceLOINC) != "#ffc0cb" {
		t.Error("unexpected LOINC color")
	}
	if Color(ResourceOPS) != "#9a31a8" {
		t.Error("unexpected OPS color")
	}
	if Color("whatever") != "#808080" {
		t.Error("unexpected default color")
	}
}

// =========== Search ===========

func TestSearchICD_Success(t *testing.T) {
	svc := newTestService()
	results, err := svc.SearchICD(context.Background(), "diabetes", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Error("expected results for 'diabetes'")
	}
}

func TestSearchICD_EmptyQuery(t *testing.T) {
	svc := newTestService()
	_, err := svc.SearchICD(context.Background(), "", 20)
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchOPS_NotLoaded(t *testing.T) {
	svc := NewService(newMockICDRepo(), nil, newMockLOINCRepo())
	_, err := svc.SearchOPS(context.Background(), "appendektomie", 20)
	if err == nil {
		t.Fatal("expected error when OPS catalog is missing")
	}
	if !strings.Contains(err.Error(), "OPS") {
		t.Errorf("expected error to name the OPS catalog, got %q", err)
	}
}

func TestSearchLOINC_Success(t *testing.T) {
	svc := newTestService()
	results, err := svc.SearchLOINC(context.Background(), "hemoglobin", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

// =========== Lineage ===========

func TestLineage_ICD(t *testing.T) {
	svc := newTestService()
	l, err := svc.Lineage(context.Background(), "E11.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ResourceType != ResourceICD {
		t.Errorf("expected ICD, got %q", l.ResourceType)
	}
	if l.GroupCode != "E10-E14" || l.ChapterCode != "4" {
		t.Errorf("unexpected lineage: %+v", l)
	}
}

func TestLineage_LOINCAxes(t *testing.T) {
	svc := newTestService()
	l, err := svc.Lineage(context.Background(), "718-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.GroupCode != "MCnc" || l.ChapterCode != "Bld" {
		t.Errorf("expected property/system axes as group/chapter, got %+v", l)
	}
}

func TestLineage_OPS(t *testing.T) {
	svc := newTestService()
	l, err := svc.Lineage(context.Background(), "5-470")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ChapterCode != "5" {
		t.Errorf("unexpected chapter: %+v", l)
	}
}

func TestLineage_UnknownShape(t *testing.T) {
	svc := newTestService()
	_, err := svc.Lineage(context.Background(), "12345")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestLineage_MissingCode(t *testing.T) {
	svc := newTestService()
	_, err := svc.Lineage(context.Background(), "Z99.9")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestDisplayName_MissOrHit(t *testing.T) {
	svc := newTestService()
	if got := svc.DisplayName(context.Background(), "E11.9"); !strings.Contains(got, "Diabetes") {
		t.Errorf("expected catalog name, got %q", got)
	}
	if got := svc.DisplayName(context.Background(), "Z99.9"); got != "" {
		t.Errorf("expected empty name for unknown code, got %q", got)
	}
}

func TestDisplayForLevel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		level int
		want  string
	}{
		{4, "Diabetes mellitus Typ 2: ohne Komplikationen"},
		{3, "Diabetes mellitus"},
		{2, "Endokrine Krankheiten"},
		{1, ResourceICD},
		{0, "FHIR"},
	}
	for _, tc := range cases {
		got, err := svc.DisplayForLevel(ctx, "E11.9", tc.level)
		if err != nil {
			t.Fatalf("level %d: unexpected error: %v", tc.level, err)
		}
		if got != tc.want {
			t.Errorf("DisplayForLevel(E11.9, %d) = %q, want %q", tc.level, got, tc.want)
		}
	}

	if _, err := svc.DisplayForLevel(ctx, "E11.9", 7); err == nil {
		t.Error("expected error for an out-of-range level")
	}
	if _, err := svc.DisplayForLevel(ctx, "Z99.9", 4); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("expected ErrCodeNotFound, got %v", err)
	}
}

// =========== LoadDir partial failure ===========

func TestLoadDir_PartialFailure(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{
		"ICD_Katalog_2023.csv":     icdCSV,
		"LOINC_DWH_export_2024.csv": loincCSV,
	})
	svc := LoadDir(dir)
	st := svc.Status()
	if !st.ICD.Loaded || !st.LOINC.Loaded {
		t.Errorf("expected ICD and LOINC to load: %+v", st)
	}
	if st.OPS.Loaded {
		t.Error("expected OPS load to fail")
	}
	if !strings.Contains(st.OPS.Error, OPSFilePrefix) {
		t.Errorf("expected OPS error to name the export prefix, got %q", st.OPS.Error)
	}
	if len(svc.Errors()) != 1 {
		t.Errorf("expected exactly one load error, got %v", svc.Errors())
	}

	// The loaded catalogs still answer.
	if _, err := svc.Lineage(context.Background(), "E11.9"); err != nil {
		t.Errorf("ICD lookup should still work: %v", err)
	}
	if _, err := svc.Lineage(context.Background(), "5-470"); err == nil {
		t.Error("expected OPS lookup to fail")
	}
}
