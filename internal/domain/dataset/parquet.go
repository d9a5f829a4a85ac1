package dataset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// RequiredColumns lists the parquet columns an export must provide.
var RequiredColumns = []string{"PatientID", "Codes", "ResourceType"}

// ReadFile reads a parquet export into records. The file schema is checked
// first so that a mismatch reports every missing column by name instead of
// silently yielding zero values.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("not a readable parquet file: %w", err)
	}

	have := make(map[string]bool)
	for _, field := range pf.Schema().Fields() {
		have[field.Name()] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("parquet schema mismatch: missing required columns: %s", strings.Join(missing, ", "))
	}

	reader := parquet.NewGenericReader[Record](f)
	defer reader.Close()

	const readBatch = 8192
	buf := make([]Record, readBatch)
	records := make([]Record, 0, reader.NumRows())
	for {
		n, err := reader.Read(buf)
		records = append(records, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}

	return records, nil
}
