package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/hivdash/internal/contracts"
)

// Options controls how the source file is read
type Options struct {
	// SkipRows is the number of raw preamble lines before the first data line
	SkipRows int
	// Columns is the fixed schema; every data line must have exactly len(Columns) fields
	Columns []string
	// Comma is the field delimiter (default ',')
	Comma rune
}

// DefaultOptions returns the layout of the published dataset: two preamble lines, nine columns
func DefaultOptions() Options {
	return Options{
		SkipRows: 2,
		Columns:  contracts.Columns(),
		Comma:    ',',
	}
}

// Loader reads the source file into a Cleaned Table
// ⭐ SSOT: the only place that parses the input file
type Loader struct {
	opt Options
	log zerolog.Logger
}

// NewLoader creates a loader
func NewLoader(opt Options, log zerolog.Logger) *Loader {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	if len(opt.Columns) == 0 {
		opt.Columns = contracts.Columns()
	}
	return &Loader{
		opt: opt,
		log: log.With().Str("component", "dataset.loader").Logger(),
	}
}

// Load opens path and reads it
func (l *Loader) Load(path string) (*contracts.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, contracts.ErrIO)
	}
	defer f.Close()

	table, err := l.Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	stats := table.Stats()
	l.log.Info().
		Str("path", path).
		Int("total_rows", stats.TotalRows).
		Int("kept_rows", stats.KeptRows()).
		Int("dropped_rows", stats.DroppedRows).
		Msg("dataset loaded")

	return table, nil
}

// Read parses the source from r
func (l *Loader) Read(r io.Reader) (*contracts.Table, error) {
	br := bufio.NewReader(r)

	// Preamble is skipped by raw line, not by CSV record
	for i := 0; i < l.opt.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return contracts.NewTable(nil, contracts.LoadStats{}), nil
			}
			return nil, fmt.Errorf("skip preamble line %d: %v: %w", i+1, err, contracts.ErrIO)
		}
	}

	ncol := len(l.opt.Columns)
	idx := columnIndex(l.opt.Columns)

	cr := csv.NewReader(br)
	cr.Comma = l.opt.Comma
	cr.FieldsPerRecord = ncol
	cr.ReuseRecord = true

	var (
		records []contracts.Record
		stats   contracts.LoadStats
	)

	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("line %d: %v: %w", perr.Line+l.opt.SkipRows, perr.Err, contracts.ErrFormat)
			}
			return nil, fmt.Errorf("read row %d: %v: %w", stats.TotalRows+1, err, contracts.ErrIO)
		}
		stats.TotalRows++

		row, ok := parseRecord(rec, idx)
		if !ok {
			stats.DroppedRows++
			l.log.Debug().
				Int("row", stats.TotalRows).
				Str("count", field(rec, idx, contracts.ColCount)).
				Msg("row dropped: count coercion failed")
			continue
		}
		if !row.HasYear() {
			l.log.Debug().
				Int("row", stats.TotalRows).
				Str("year", field(rec, idx, contracts.ColYear)).
				Msg("row kept with unknown year")
		}
		records = append(records, row)
	}

	if stats.DroppedRows > 0 {
		l.log.Warn().
			Int("dropped_rows", stats.DroppedRows).
			Int("total_rows", stats.TotalRows).
			Msg("rows dropped during numeric coercion")
	}

	return contracts.NewTable(records, stats), nil
}

// Load reads path with a silent logger
func Load(path string, opt Options) (*contracts.Table, error) {
	return NewLoader(opt, zerolog.Nop()).Load(path)
}

// Read parses r with a silent logger
func Read(r io.Reader, opt Options) (*contracts.Table, error) {
	return NewLoader(opt, zerolog.Nop()).Read(r)
}

func columnIndex(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseRecord maps one CSV record to a Record; ok=false means the row must be dropped
func parseRecord(rec []string, idx map[string]int) (contracts.Record, bool) {
	count, ok := ParseCount(field(rec, idx, contracts.ColCount))
	if !ok {
		return contracts.Record{}, false
	}
	year, err := strconv.Atoi(field(rec, idx, contracts.ColYear))
	if err != nil || year <= 0 {
		year = contracts.YearUnknown
	}

	return contracts.Record{
		RegionCode:   field(rec, idx, contracts.ColRegionCode),
		DistrictCode: field(rec, idx, contracts.ColDistrictCode),
		RegionName:   field(rec, idx, contracts.ColRegionName),
		DistrictName: field(rec, idx, contracts.ColDistrictName),
		Year:         year,
		Gender:       field(rec, idx, contracts.ColGender),
		Label:        field(rec, idx, contracts.ColLabel),
		Count:        count,
		Unit:         field(rec, idx, contracts.ColUnit),
	}, true
}

// ParseCount coerces a patient count. Empty, non-numeric, NaN and ±Inf are missing.
func ParseCount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
