package dataset

import (
	"time"

	"github.com/pelingenc/coco/internal/domain/cooccur"
)

// Record is one flat FHIR row from the uploaded parquet export: a patient,
// a code and the FHIR resource type it was recorded on.
type Record struct {
	PatientID    int64  `parquet:"PatientID" json:"patient_id"`
	Codes        string `parquet:"Codes" json:"code"`
	ResourceType string `parquet:"ResourceType" json:"resource_type"`
}

// EnrichedRecord joins a record with its catalog display fields. Codes
// absent from the catalogs keep empty displays; that is not an error.
type EnrichedRecord struct {
	Record
	Display     string `json:"display"`
	FullDisplay string `json:"full_display"`
}

// Summary describes one uploaded dataset.
type Summary struct {
	ID            string         `json:"id"`
	FileName      string         `json:"file_name"`
	CreatedAt     time.Time      `json:"created_at"`
	Records       int            `json:"records"`
	Patients      int            `json:"patients"`
	Codes         int            `json:"codes"`
	ByType        map[string]int `json:"by_resource_type"`
	CatalogErrors []string       `json:"catalog_errors,omitempty"`
}

// Session holds everything derived from one upload: the enriched records,
// the co-occurrence matrix over the sorted code vocabulary, the catalog
// hierarchy of those codes and the label lookups used by the graph views.
// A session is immutable once built.
type Session struct {
	Summary      Summary
	Records      []EnrichedRecord
	Codes        []string
	Matrix       *cooccur.Matrix
	Hierarchy    *cooccur.Hierarchy
	Displays     map[string]string
	FullDisplays map[string]string
}
