package catalog

// Resource types distinguished by code shape.
const (
	ResourceICD     = "ICD"
	ResourceOPS     = "OPS"
	ResourceLOINC   = "LOINC"
	ResourceUnknown = "Unknown"
)

// Catalog export filename prefixes. The DWH exports carry a date stamp
// after the prefix, so files are discovered by prefix rather than exact name.
const (
	ICDFilePrefix   = "ICD_Katalog_"
	OPSFilePrefix   = "OPS_Katalog_"
	LOINCFilePrefix = "LOINC_DWH_export_"
)

// ICDEntry is one row of the ICD-10-GM catalog export.
type ICDEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	GroupCode   string `json:"group_code"`
	GroupName   string `json:"group_name"`
	ChapterCode string `json:"chapter_code"`
	ChapterName string `json:"chapter_name"`
}

// OPSEntry is one row of the OPS procedure catalog export.
type OPSEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	GroupCode   string `json:"group_code"`
	GroupName   string `json:"group_name"`
	ChapterCode string `json:"chapter_code"`
	ChapterName string `json:"chapter_name"`
}

// LOINCEntry is one row of the LOINC catalog export. LOINC has no
// chapter/group columns; the property and system axes stand in for them.
type LOINCEntry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Property string `json:"property"`
	System   string `json:"system"`
}

// Lineage is the full hierarchy position of one code: its resource type
// plus the chapter and group it belongs to. For LOINC the system axis maps
// to the chapter and the property axis to the group.
type Lineage struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	GroupCode    string `json:"group_code"`
	GroupName    string `json:"group_name"`
	ChapterCode  string `json:"chapter_code"`
	ChapterName  string `json:"chapter_name"`
}

// Status reports the outcome of loading a catalog directory.
type Status struct {
	Dir   string        `json:"dir"`
	ICD   SystemStatus  `json:"icd"`
	OPS   SystemStatus  `json:"ops"`
	LOINC SystemStatus  `json:"loinc"`
}

// SystemStatus is the load outcome for a single coding system.
type SystemStatus struct {
	Loaded bool   `json:"loaded"`
	File   string `json:"file,omitempty"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// ResourceTypeOf infers the coding system from the shape of a code.
// ICD-10 codes start with an uppercase letter (E11.9), LOINC codes end in a
// check digit after a dash (718-7), OPS codes carry the dash in the second
// position (5-470).
func ResourceTypeOf(code string) string {
	if code == "" {
		return ResourceUnknown
	}
	switch {
	case code[0] >= 'A' && code[0] <= 'Z':
		return ResourceICD
	case len(code) >= 2 && code[len(code)-2] == '-':
		return ResourceLOINC
	case len(code) >= 2 && code[1] == '-':
		return ResourceOPS
	default:
		return ResourceUnknown
	}
}

// Color returns the display color associated with a resource type.
func Color(resourceType string) string {
	switch resourceType {
	case ResourceICD:
		return "#00bfff"
	case ResourceLOINC:
		return "#ffc0cb"
	case ResourceOPS:
		return "#9a31a8"
	default:
		return "#808080"
	}
}
