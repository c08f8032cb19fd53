package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// contextCheckInterval is how often (in rows) the delimited reader checks
// for cancellation.
const contextCheckInterval = 1000

// readDelimited reads a delimited text file. Parser errors are returned
// wrapped, never swallowed.
func readDelimited(ctx context.Context, p ResolvedParameters) (*result, error) {
	comma, err := ParseDelimiter(p.Sep)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p.Filepath)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	src := cleanReader(f)
	r := csv.NewReader(src)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	var records [][]string
	for {
		if len(records)%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, rec)
	}

	df, err := buildTable(records, p, shapeStrict)
	if err != nil {
		return nil, err
	}

	p.log().Debug("delimited file parsed",
		"bytes", src.n,
		"records", len(records),
		"sep", string(comma),
	)

	return &result{tables: []NamedTable{{Name: "", Data: df}}}, nil
}
