package dashboard

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/wonny/hivdash/internal/contracts"
)

// colRow holds each record's index in the Cleaned Table
const colRow = "row"

// frame indexes the Cleaned Table as a dataframe for equality filters
type frame struct {
	df    dataframe.DataFrame
	table *contracts.Table
}

func newFrame(table *contracts.Table) (*frame, error) {
	n := table.Len()
	rows := make([]int, n)
	districts := make([]string, n)
	genders := make([]string, n)
	years := make([]int, n)
	counts := make([]float64, n)

	table.Each(func(i int, r contracts.Record) {
		rows[i] = i
		districts[i] = r.DistrictName
		genders[i] = r.Gender
		years[i] = r.Year
		counts[i] = r.Count
	})

	df := dataframe.New(
		series.New(rows, series.Int, colRow),
		series.New(districts, series.String, contracts.ColDistrictName),
		series.New(genders, series.String, contracts.ColGender),
		series.New(years, series.Int, contracts.ColYear),
		series.New(counts, series.Float, contracts.ColCount),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("build dataframe: %w", df.Err)
	}

	return &frame{df: df, table: table}, nil
}

// where returns the records whose column equals value, in file order
func (f *frame) where(column, value string) ([]contracts.Record, error) {
	if f.table.Len() == 0 {
		return []contracts.Record{}, nil
	}

	sub := f.df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.Eq,
		Comparando: value,
	})
	if sub.Err != nil {
		return nil, fmt.Errorf("filter %s=%q: %w", column, value, sub.Err)
	}

	idx, err := sub.Col(colRow).Int()
	if err != nil {
		return nil, fmt.Errorf("read row index: %w", err)
	}

	out := make([]contracts.Record, len(idx))
	for i, j := range idx {
		out[i] = f.table.At(j)
	}
	return out, nil
}
