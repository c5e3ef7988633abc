package contracts

// Column names of the source file, in file order
const (
	ColRegionCode   = "kode_kabupaten"
	ColDistrictCode = "kode_kecamatan"
	ColRegionName   = "nama_kabupaten"
	ColDistrictName = "nama_kecamatan"
	ColYear         = "tahun"
	ColGender       = "jenis_kelamin"
	ColLabel        = "keterangan"
	ColCount        = "jumlah_pasien_hiv"
	ColUnit         = "satuan"
)

// Columns returns the fixed 9-column schema of the source file
func Columns() []string {
	return []string{
		ColRegionCode, ColDistrictCode, ColRegionName, ColDistrictName,
		ColYear, ColGender, ColLabel, ColCount, ColUnit,
	}
}

// Canonical gender categories, in the feature order the model was trained on
const (
	GenderMale   = "Laki-Laki"
	GenderFemale = "Perempuan"
)

// CanonicalGenders returns the two-category pivot order
func CanonicalGenders() [2]string {
	return [2]string{GenderMale, GenderFemale}
}

// YearUnknown is the Year of a row whose year did not parse. The row still
// counts everywhere except the yearly view.
const YearUnknown = 0

// Record is one cleaned row of the source table
type Record struct {
	RegionCode   string  `json:"region_code"`
	DistrictCode string  `json:"district_code"`
	RegionName   string  `json:"region_name"`
	DistrictName string  `json:"district_name"`
	Year         int     `json:"year"` // YearUnknown when unparseable
	Gender       string  `json:"gender"`
	Label        string  `json:"label"`
	Count        float64 `json:"count"` // patient count, always finite after cleaning
	Unit         string  `json:"unit"`
}

// HasYear reports whether the row belongs to a known year
func (r Record) HasYear() bool {
	return r.Year > YearUnknown
}

// LoadStats describes what the loader kept and dropped
type LoadStats struct {
	TotalRows   int `json:"total_rows"`   // data lines after the preamble
	DroppedRows int `json:"dropped_rows"` // rows whose count failed coercion
}

// KeptRows returns the number of rows in the cleaned table
func (s LoadStats) KeptRows() int {
	return s.TotalRows - s.DroppedRows
}

// Table is the Cleaned Table. It is immutable after construction.
type Table struct {
	records []Record
	stats   LoadStats
}

// NewTable builds a Table from cleaned records. The slice is copied.
func NewTable(records []Record, stats LoadStats) *Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Table{records: cp, stats: stats}
}

// Records returns a copy of the rows in file order
func (t *Table) Records() []Record {
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Len returns the number of cleaned rows
func (t *Table) Len() int {
	return len(t.records)
}

// Stats returns load statistics
func (t *Table) Stats() LoadStats {
	return t.stats
}

// Each calls fn for every row in file order without copying the slice
func (t *Table) Each(fn func(i int, r Record)) {
	for i, r := range t.records {
		fn(i, r)
	}
}

// At returns row i
func (t *Table) At(i int) Record {
	return t.records[i]
}

// GrandTotal sums the count column
func (t *Table) GrandTotal() float64 {
	var sum float64
	for _, r := range t.records {
		sum += r.Count
	}
	return sum
}
