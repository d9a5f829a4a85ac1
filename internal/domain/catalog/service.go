package catalog

import (
	"context"
	"fmt"
)

// Service provides catalog lookup and search operations across the three
// coding systems. Repositories may be nil when their export failed to load;
// every operation degrades to a readable error for that system while the
// others stay available.
type Service struct {
	icd    ICDRepository
	ops    OPSRepository
	loinc  LOINCRepository
	status Status
}

// NewService creates a catalog service from already-loaded repositories.
func NewService(icd ICDRepository, ops OPSRepository, loinc LOINCRepository) *Service {
	s := &Service{icd: icd, ops: ops, loinc: loinc}
	s.status = Status{
		ICD:   SystemStatus{Loaded: icd != nil, Count: count(icd)},
		OPS:   SystemStatus{Loaded: ops != nil, Count: countOPS(ops)},
		LOINC: SystemStatus{Loaded: loinc != nil, Count: countLOINC(loinc)},
	}
	return s
}

func count(r ICDRepository) int {
	if r == nil {
		return 0
	}
	return r.Count()
}

func countOPS(r OPSRepository) int {
	if r == nil {
		return 0
	}
	return r.Count()
}

func countLOINC(r LOINCRepository) int {
	if r == nil {
		return 0
	}
	return r.Count()
}

// LoadDir loads all three catalog exports from dir. A missing or malformed
// export does not abort the load: the failure is recorded in the returned
// status and the remaining catalogs are still served.
func LoadDir(dir string) *Service {
	s := &Service{}
	s.status.Dir = dir

	icd, file, err := NewICDRepositoryFromDir(dir)
	if err != nil {
		s.status.ICD = SystemStatus{Error: err.Error()}
	} else {
		s.icd = icd
		s.status.ICD = SystemStatus{Loaded: true, File: file, Count: icd.Count()}
	}

	ops, file, err := NewOPSRepositoryFromDir(dir)
	if err != nil {
		s.status.OPS = SystemStatus{Error: err.Error()}
	} else {
		s.ops = ops
		s.status.OPS = SystemStatus{Loaded: true, File: file, Count: ops.Count()}
	}

	loinc, file, err := NewLOINCRepositoryFromDir(dir)
	if err != nil {
		s.status.LOINC = SystemStatus{Error: err.Error()}
	} else {
		s.loinc = loinc
		s.status.LOINC = SystemStatus{Loaded: true, File: file, Count: loinc.Count()}
	}

	return s
}

// Status reports per-system load outcomes.
func (s *Service) Status() Status {
	return s.status
}

// Errors returns the load failure messages, one per failed catalog.
func (s *Service) Errors() []string {
	var errs []string
	for _, st := range []SystemStatus{s.status.ICD, s.status.OPS, s.status.LOINC} {
		if st.Error != "" {
			errs = append(errs, st.Error)
		}
	}
	return errs
}

// -- Search --

// SearchICD searches ICD-10-GM codes by query text.
func (s *Service) SearchICD(ctx context.Context, query string, limit int) ([]*ICDEntry, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if s.icd == nil {
		return nil, fmt.Errorf("ICD catalog is not loaded: %s", s.status.ICD.Error)
	}
	return s.icd.Search(ctx, query, limit)
}

// SearchOPS searches OPS codes by query text.
func (s *Service) SearchOPS(ctx context.Context, query string, limit int) ([]*OPSEntry, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if s.ops == nil {
		return nil, fmt.Errorf("OPS catalog is not loaded: %s", s.status.OPS.Error)
	}
	return s.ops.Search(ctx, query, limit)
}

// SearchLOINC searches LOINC codes by query text.
func (s *Service) SearchLOINC(ctx context.Context, query string, limit int) ([]*LOINCEntry, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if s.loinc == nil {
		return nil, fmt.Errorf("LOINC catalog is not loaded: %s", s.status.LOINC.Error)
	}
	return s.loinc.Search(ctx, query, limit)
}

// -- Lookup --

// Lineage resolves a code to its full hierarchy position. The coding system
// is inferred from the code shape. Codes absent from their catalog return
// ErrCodeNotFound.
func (s *Service) Lineage(ctx context.Context, code string) (*Lineage, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}

	switch ResourceTypeOf(code) {
	case ResourceICD:
		if s.icd == nil {
			return nil, fmt.Errorf("ICD %s: %w", code, ErrCodeNotFound)
		}
		e, err := s.icd.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return &Lineage{
			Code:         e.Code,
			Name:         e.Name,
			ResourceType: ResourceICD,
			GroupCode:    e.GroupCode,
			GroupName:    e.GroupName,
			ChapterCode:  e.ChapterCode,
			ChapterName:  e.ChapterName,
		}, nil
	case ResourceOPS:
		if s.ops == nil {
			return nil, fmt.Errorf("OPS %s: %w", code, ErrCodeNotFound)
		}
		e, err := s.ops.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return &Lineage{
			Code:         e.Code,
			Name:         e.Name,
			ResourceType: ResourceOPS,
			GroupCode:    e.GroupCode,
			GroupName:    e.GroupName,
			ChapterCode:  e.ChapterCode,
			ChapterName:  e.ChapterName,
		}, nil
	case ResourceLOINC:
		if s.loinc == nil {
			return nil, fmt.Errorf("LOINC %s: %w", code, ErrCodeNotFound)
		}
		e, err := s.loinc.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return &Lineage{
			Code:         e.Code,
			Name:         e.Name,
			ResourceType: ResourceLOINC,
			GroupCode:    e.Property,
			GroupName:    e.Property,
			ChapterCode:  e.System,
			ChapterName:  e.System,
		}, nil
	default:
		return nil, fmt.Errorf("code %q matches no known coding system: %w", code, ErrCodeNotFound)
	}
}

// DisplayName returns the catalog name of a code, or an empty string when
// the code is unknown. Unknown codes are expected (the uploaded data may be
// newer than the catalogs) and must not fail the caller.
func (s *Service) DisplayName(ctx context.Context, code string) string {
	l, err := s.Lineage(ctx, code)
	if err != nil {
		return ""
	}
	return l.Name
}

// DisplayForLevel returns the label of the hierarchy node a code belongs to
// at the given level: its own name at level 4, the group and chapter names
// at 3 and 2, the coding system at 1 and "FHIR" at the root.
func (s *Service) DisplayForLevel(ctx context.Context, code string, level int) (string, error) {
	l, err := s.Lineage(ctx, code)
	if err != nil {
		return "", err
	}
	switch level {
	case 4:
		return l.Name, nil
	case 3:
		return l.GroupName, nil
	case 2:
		return l.ChapterName, nil
	case 1:
		return l.ResourceType, nil
	case 0:
		return "FHIR", nil
	default:
		return "", fmt.Errorf("level %d is out of range", level)
	}
}
