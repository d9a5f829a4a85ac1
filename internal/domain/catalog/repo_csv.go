package catalog

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// csvTable is a catalog CSV loaded into memory: a lowercase header→index
// map plus the data rows.
type csvTable struct {
	colIdx map[string]int
	rows   [][]string
}

func (t *csvTable) field(row []string, col string) string {
	idx, ok := t.colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.ToValidUTF8(strings.TrimSpace(row[idx]), "�")
}

// readCSVFile streams a catalog export into memory. The required column
// names are checked against the header row; a mismatch reports every
// missing column at once.
func readCSVFile(path string, required []string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	t := &csvTable{colIdx: make(map[string]int, len(headerRow))}
	for i, h := range headerRow {
		t.colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.colIdx[col]; !ok {
			missing = append(missing, strings.ToUpper(col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing required columns: %s", filepath.Base(path), strings.Join(missing, ", "))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// findCatalogFile locates a catalog export in dir by filename prefix.
// When several date-stamped exports are present the lexically newest wins.
func findCatalogFile(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.csv"))
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s*.csv found in %s", prefix, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// -- ICD --

type icdCSVRepo struct {
	byCode map[string]*ICDEntry
	codes  []string
}

// NewICDRepositoryFromDir discovers and loads the ICD-10-GM export in dir.
func NewICDRepositoryFromDir(dir string) (ICDRepository, string, error) {
	path, err := findCatalogFile(dir, ICDFilePrefix)
	if err != nil {
		return nil, "", err
	}
	repo, err := NewICDRepositoryFromFile(path)
	return repo, filepath.Base(path), err
}

// NewICDRepositoryFromFile loads a single ICD-10-GM export.
func NewICDRepositoryFromFile(path string) (ICDRepository, error) {
	t, err := readCSVFile(path, []string{"icd_code", "icd_name", "gruppe_code", "gruppe_nurname", "kapitel_code", "kapitel_nurname"})
	if err != nil {
		return nil, err
	}

	r := &icdCSVRepo{byCode: make(map[string]*ICDEntry, len(t.rows))}
	for _, row := range t.rows {
		code := t.field(row, "icd_code")
		if code == "" {
			continue
		}
		if _, dup := r.byCode[code]; dup {
			continue
		}
		r.byCode[code] = &ICDEntry{
			Code:        code,
			Name:        t.field(row, "icd_name"),
			GroupCode:   t.field(row, "gruppe_code"),
			GroupName:   t.field(row, "gruppe_nurname"),
			ChapterCode: t.field(row, "kapitel_code"),
			ChapterName: t.field(row, "kapitel_nurname"),
		}
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r, nil
}

func (r *icdCSVRepo) Search(_ context.Context, query string, limit int) ([]*ICDEntry, error) {
	q := strings.ToLower(query)
	var results []*ICDEntry
	for _, code := range r.codes {
		e := r.byCode[code]
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (r *icdCSVRepo) GetByCode(_ context.Context, code string) (*ICDEntry, error) {
	e, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("ICD %s: %w", code, ErrCodeNotFound)
	}
	return e, nil
}

func (r *icdCSVRepo) Count() int { return len(r.codes) }

// -- OPS --

type opsCSVRepo struct {
	byCode map[string]*OPSEntry
	codes  []string
}

// NewOPSRepositoryFromDir discovers and loads the OPS export in dir.
func NewOPSRepositoryFromDir(dir string) (OPSRepository, string, error) {
	path, err := findCatalogFile(dir, OPSFilePrefix)
	if err != nil {
		return nil, "", err
	}
	repo, err := NewOPSRepositoryFromFile(path)
	return repo, filepath.Base(path), err
}

// NewOPSRepositoryFromFile loads a single OPS export.
func NewOPSRepositoryFromFile(path string) (OPSRepository, error) {
	t, err := readCSVFile(path, []string{"ops_code", "ops_name", "gruppe_code", "gruppe_nurname", "kapitel_code", "kapitel_nurname"})
	if err != nil {
		return nil, err
	}

	r := &opsCSVRepo{byCode: make(map[string]*OPSEntry, len(t.rows))}
	for _, row := range t.rows {
		code := t.field(row, "ops_code")
		if code == "" {
			continue
		}
		if _, dup := r.byCode[code]; dup {
			continue
		}
		r.byCode[code] = &OPSEntry{
			Code:        code,
			Name:        t.field(row, "ops_name"),
			GroupCode:   t.field(row, "gruppe_code"),
			GroupName:   t.field(row, "gruppe_nurname"),
			ChapterCode: t.field(row, "kapitel_code"),
			ChapterName: t.field(row, "kapitel_nurname"),
		}
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r, nil
}

func (r *opsCSVRepo) Search(_ context.Context, query string, limit int) ([]*OPSEntry, error) {
	q := strings.ToLower(query)
	var results []*OPSEntry
	for _, code := range r.codes {
		e := r.byCode[code]
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (r *opsCSVRepo) GetByCode(_ context.Context, code string) (*OPSEntry, error) {
	e, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("OPS %s: %w", code, ErrCodeNotFound)
	}
	return e, nil
}

func (r *opsCSVRepo) Count() int { return len(r.codes) }

// -- LOINC --

type loincCSVRepo struct {
	byCode map[string]*LOINCEntry
	codes  []string
}

// NewLOINCRepositoryFromDir discovers and loads the LOINC export in dir.
func NewLOINCRepositoryFromDir(dir string) (LOINCRepository, string, error) {
	path, err := findCatalogFile(dir, LOINCFilePrefix)
	if err != nil {
		return nil, "", err
	}
	repo, err := NewLOINCRepositoryFromFile(path)
	return repo, filepath.Base(path), err
}

// NewLOINCRepositoryFromFile loads a single LOINC export.
func NewLOINCRepositoryFromFile(path string) (LOINCRepository, error) {
	t, err := readCSVFile(path, []string{"loinc_code", "loinc_name", "loinc_property", "loinc_system"})
	if err != nil {
		return nil, err
	}

	r := &loincCSVRepo{byCode: make(map[string]*LOINCEntry, len(t.rows))}
	for _, row := range t.rows {
		code := t.field(row, "loinc_code")
		if code == "" {
			continue
		}
		if _, dup := r.byCode[code]; dup {
			continue
		}
		r.byCode[code] = &LOINCEntry{
			Code:     code,
			Name:     t.field(row, "loinc_name"),
			Property: t.field(row, "loinc_property"),
			System:   t.field(row, "loinc_system"),
		}
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r, nil
}

func (r *loincCSVRepo) Search(_ context.Context, query string, limit int) ([]*LOINCEntry, error) {
	q := strings.ToLower(query)
	var results []*LOINCEntry
	for _, code := range r.codes {
		e := r.byCode[code]
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			results = append(results, e)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (r *loincCSVRepo) GetByCode(_ context.Context, code string) (*LOINCEntry, error) {
	e, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("LOINC %s: %w", code, ErrCodeNotFound)
	}
	return e, nil
}

func (r *loincCSVRepo) Count() int { return len(r.codes) }
