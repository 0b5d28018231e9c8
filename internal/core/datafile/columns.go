package datafile

import (
	"context"
	"time"
)

// ColumnOptions configures Bank.Columns.
type ColumnOptions struct {
	Decorate []string // meta fields appended as a final column
	Reverse  bool     // oldest first
}

// Columns collects the values of keys recorded within age and returns them
// column-wise: one column per key, followed by a metadata column when
// decoration is requested. When no record is in the window every column is
// nil.
func (b *Bank) Columns(ctx context.Context, keys []string, age time.Duration, opts ColumnOptions) ([][]any, error) {
	width := len(keys)
	if len(opts.Decorate) > 0 {
		width++
	}

	agg := NewMulti(keys, age, MultiOptions{Decorate: opts.Decorate, Reverse: opts.Reverse})
	result, err := b.ScanFlat(ctx, agg)
	if err != nil {
		return nil, err
	}

	rows, _ := result.([]any)
	columns := make([][]any, width)
	if len(rows) == 0 {
		return columns, nil
	}
	for i := range columns {
		columns[i] = make([]any, 0, len(rows))
	}

	for _, row := range rows {
		value := row
		if len(opts.Decorate) > 0 {
			pair := row.([]any)
			value = pair[0]
			columns[width-1] = append(columns[width-1], pair[1])
		}

		if len(keys) == 1 {
			columns[0] = append(columns[0], value)
			continue
		}
		for i, v := range value.([]any) {
			columns[i] = append(columns[i], v)
		}
	}
	return columns, nil
}
