// Package rules loads the rule-matching table and evaluates it against a
// respondent's service offering.
package rules

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/assessment-advisor/internal/fetcher"
)

// ErrNotFound is returned when the rule table file is missing or unreadable.
var ErrNotFound = errors.New("rules: table not found")

// Table maps a question key to its raw rule strings in column order. A key
// listed with no rule cells maps to an empty, non-nil slice.
type Table map[string][]string

// Get returns the raw rules for key.
func (t Table) Get(key string) ([]string, bool) {
	r, ok := t[key]
	return r, ok
}

// Load reads a rule table from CSV. The first row is a header and is skipped.
// When a key appears more than once the last row replaces earlier ones.
// Stray quotes inside a cell are kept as literal text.
func Load(ctx context.Context, r io.Reader) (Table, error) {
	rows, err := fetcher.Collect(fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{HasHeader: true, LazyQuotes: true}))
	if err != nil {
		return nil, eris.Wrap(err, "rules: parse table")
	}

	t := make(Table, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		raw := make([]string, len(row)-1)
		copy(raw, row[1:])
		t[row[0]] = raw
	}
	return t, nil
}

// LoadFile reads the rule table at path. A missing or unreadable file yields
// an error matching ErrNotFound.
func LoadFile(ctx context.Context, path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrNotFound, "rules: open %s: %v", path, err)
	}
	defer f.Close() //nolint:errcheck

	return Load(ctx, f)
}
