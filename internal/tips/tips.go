// Package tips turns a baseline advice sheet into advice documents.
//
// A sheet has one row per question, in assessment order, with columns
// Question, Start_Doing, Do_More and Keep_Doing. The header row is required
// but its labels are ignored: columns are read by position.
package tips

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/fetcher"
	"github.com/sells-group/assessment-advisor/internal/model"
)

// Columns is the expected sheet layout.
var Columns = []string{"Question", "Start_Doing", "Do_More", "Keep_Doing"}

// Options configures Parse.
type Options struct {
	// SkipRows drops leading rows before the header, such as a title row.
	SkipRows int
	// StartIndex is the question number of the first data row. Set it to
	// the running total when a sheet continues a previous one.
	StartIndex int
}

// Result is a parsed sheet.
type Result struct {
	Docs []model.AdviceDoc
	// Questions is the number of data rows consumed, including rows with no
	// advice text.
	Questions int
}

// NextIndex is the StartIndex for a sheet that follows this one.
func (r Result) NextIndex(opts Options) int {
	return opts.StartIndex + r.Questions
}

// Parse converts sheet rows into advice documents. Empty cells produce no
// document but the row still consumes a question number.
func Parse(rows [][]string, opts Options) (Result, error) {
	if opts.SkipRows < 0 || opts.StartIndex < 0 {
		return Result{}, eris.New("tips: skip rows and start index must be >= 0")
	}
	if opts.SkipRows < len(rows) {
		rows = rows[opts.SkipRows:]
	} else {
		rows = nil
	}
	if len(rows) == 0 {
		return Result{}, eris.New("tips: sheet has no header row")
	}

	header := rows[0]
	if len(header) < len(Columns) {
		return Result{}, eris.Errorf("tips: expected %d columns (%s), got %d",
			len(Columns), strings.Join(Columns, ", "), len(header))
	}
	if len(header) > len(Columns) {
		zap.L().Warn("tips: ignoring extra columns", zap.Int("columns", len(header)))
	}

	var res Result
	for i, row := range rows[1:] {
		id := model.QuestionID(opts.StartIndex + i)
		for j, cat := range model.AdviceCategories {
			col := j + 1
			if col >= len(row) {
				break
			}
			text := strings.TrimSpace(row[col])
			if text == "" {
				continue
			}
			res.Docs = append(res.Docs, model.AdviceDoc{
				QuestionID: id,
				Category:   cat,
				Text:       text,
			})
		}
		res.Questions++
	}
	return res, nil
}

// ReadFile loads and parses a .csv or .xlsx tips sheet.
func ReadFile(ctx context.Context, path string, opts Options) (Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = fetcher.ReadCSVFile(ctx, path, fetcher.CSVOptions{})
	case ".xlsx":
		rows, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	default:
		return Result{}, eris.Errorf("tips: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return Result{}, eris.Wrapf(err, "tips: read %s", path)
	}

	res, err := Parse(rows, opts)
	if err != nil {
		return Result{}, eris.Wrapf(err, "tips: parse %s", path)
	}
	return res, nil
}
