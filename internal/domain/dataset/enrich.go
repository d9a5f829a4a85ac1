package dataset

import (
	"context"
	"strings"

	"github.com/pelingenc/coco/internal/domain/catalog"
)

// displayWidth is the rune width of the short node labels before
// truncation kicks in.
const displayWidth = 11

// Enrich joins records against the catalogs. The join is pure: the same
// records and catalogs always produce the same output, and a code missing
// from its catalog enriches to empty display fields without failing.
func Enrich(ctx context.Context, records []Record, catalogs *catalog.Service) []EnrichedRecord {
	// Codes repeat heavily across patients; resolve each one once.
	cache := make(map[string]string)
	enriched := make([]EnrichedRecord, len(records))
	for i, r := range records {
		full, ok := cache[r.Codes]
		if !ok {
			full = FullDisplay(r.Codes, catalogs.DisplayName(ctx, r.Codes))
			cache[r.Codes] = full
		}
		enriched[i] = EnrichedRecord{
			Record:      r,
			Display:     TruncateDisplay(full),
			FullDisplay: full,
		}
	}
	return enriched
}

// FullDisplay formats the hover label of a code. LOINC labels lead with the
// code; ICD and OPS names repeat the code before a colon in some exports,
// so that prefix is stripped. An unknown code yields an empty label.
func FullDisplay(code, name string) string {
	if name == "" {
		return ""
	}
	switch catalog.ResourceTypeOf(code) {
	case catalog.ResourceLOINC:
		return code + ": " + name
	default:
		if rest, found := strings.CutPrefix(name, code+":"); found {
			return strings.TrimSpace(rest)
		}
		return name
	}
}

// TruncateDisplay shortens a label for in-graph display.
func TruncateDisplay(s string) string {
	r := []rune(s)
	if len(r) <= displayWidth {
		return s
	}
	return string(r[:displayWidth]) + "..."
}
