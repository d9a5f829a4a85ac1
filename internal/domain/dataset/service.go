package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pelingenc/coco/internal/domain/catalog"
	"github.com/pelingenc/coco/internal/domain/cooccur"
)

// Service turns uploaded parquet exports into explorable sessions. The
// catalog directory is re-read on every upload so that updated exports are
// picked up without a restart.
type Service struct {
	catalogDir string
	store      *Store
	logger     zerolog.Logger
}

// NewService creates a dataset service.
func NewService(catalogDir string, store *Store, logger zerolog.Logger) *Service {
	return &Service{catalogDir: catalogDir, store: store, logger: logger}
}

// Upload reads a parquet export from path, joins it against the catalogs
// and stores a new session. Catalog load failures do not abort the upload:
// they surface in the session summary and the affected codes simply stay
// unlabeled.
func (s *Service) Upload(ctx context.Context, path, fileName string) (*Session, error) {
	start := time.Now()

	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no records", fileName)
	}

	catalogs := catalog.LoadDir(s.catalogDir)
	for _, msg := range catalogs.Errors() {
		s.logger.Warn().Str("file", fileName).Str("catalog_error", msg).Msg("catalog unavailable for enrichment")
	}

	sess := buildSession(ctx, records, catalogs, fileName)
	s.store.Put(sess)

	s.logger.Info().
		Str("session_id", sess.Summary.ID).
		Str("file", fileName).
		Int("records", sess.Summary.Records).
		Int("patients", sess.Summary.Patients).
		Int("codes", sess.Summary.Codes).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")

	return sess, nil
}

// buildSession derives everything the exploration views need from the raw
// records. It is deterministic for a given record set and catalog state.
func buildSession(ctx context.Context, records []Record, catalogs *catalog.Service, fileName string) *Session {
	enriched := Enrich(ctx, records, catalogs)

	obs := make([]cooccur.Observation, len(records))
	patients := make(map[int64]struct{}, len(records))
	byType := make(map[string]int)
	for i, r := range records {
		obs[i] = cooccur.Observation{PatientID: r.PatientID, Code: r.Codes}
		patients[r.PatientID] = struct{}{}
		byType[r.ResourceType]++
	}

	matrix := cooccur.Build(obs)

	lineages := make([]*catalog.Lineage, 0, matrix.Len())
	displays := make(map[string]string, matrix.Len())
	fullDisplays := make(map[string]string, matrix.Len())
	for _, code := range matrix.Codes {
		if l, err := catalogs.Lineage(ctx, code); err == nil {
			lineages = append(lineages, l)
		}
		full := FullDisplay(code, catalogs.DisplayName(ctx, code))
		displays[code] = TruncateDisplay(full)
		fullDisplays[code] = full
	}

	return &Session{
		Summary: Summary{
			ID:            uuid.New().String(),
			FileName:      fileName,
			CreatedAt:     time.Now().UTC(),
			Records:       len(records),
			Patients:      len(patients),
			Codes:         matrix.Len(),
			ByType:        byType,
			CatalogErrors: catalogs.Errors(),
		},
		Records:      enriched,
		Codes:        matrix.Codes,
		Matrix:       matrix,
		Hierarchy:    cooccur.BuildHierarchy(lineages),
		Displays:     displays,
		FullDisplays: fullDisplays,
	}
}

// Get returns a stored session.
func (s *Service) Get(id string) (*Session, error) {
	return s.store.Get(id)
}

// Codes lists the sorted code vocabulary of a session.
func (s *Service) Codes(id string) ([]string, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Codes, nil
}

// Delete removes a session.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}
