package tips

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/assessment-advisor/internal/model"
)

var sheet = [][]string{
	{"Growth Tips"},
	{"Question", "Start Doing", "Do More", "Keep Doing"},
	{"Do you track margins?", "Start tracking margins.", "Review margins monthly.", "Keep reviewing."},
	{"Do you have a CRM?", "", "Log every lead.", ""},
	{"Do you delegate?", "  Hire help.  ", "", "Keep delegating."},
}

func TestParse_SkipsTitleAndHeader(t *testing.T) {
	t.Parallel()

	res, err := Parse(sheet, Options{SkipRows: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Questions)
	assert.Equal(t, []model.AdviceDoc{
		{QuestionID: "question_00", Category: model.StartDoing, Text: "Start tracking margins."},
		{QuestionID: "question_00", Category: model.DoMore, Text: "Review margins monthly."},
		{QuestionID: "question_00", Category: model.KeepDoing, Text: "Keep reviewing."},
		{QuestionID: "question_01", Category: model.DoMore, Text: "Log every lead."},
		{QuestionID: "question_02", Category: model.StartDoing, Text: "Hire help."},
		{QuestionID: "question_02", Category: model.KeepDoing, Text: "Keep delegating."},
	}, res.Docs)
}

func TestParse_StartIndexContinuesNumbering(t *testing.T) {
	t.Parallel()

	opts := Options{SkipRows: 1, StartIndex: 9}
	res, err := Parse(sheet, opts)
	require.NoError(t, err)

	assert.Equal(t, "question_09", res.Docs[0].QuestionID)
	assert.Equal(t, "question_11", res.Docs[len(res.Docs)-1].QuestionID)
	assert.Equal(t, 12, res.NextIndex(opts))
}

func TestParse_ShortRowsStillConsumeIDs(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Question", "Start_Doing", "Do_More", "Keep_Doing"},
		{"Only a question"},
		{"Q2", "Start."},
	}
	res, err := Parse(rows, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Questions)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, model.AdviceDoc{QuestionID: "question_01", Category: model.StartDoing, Text: "Start."}, res.Docs[0])
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows [][]string
		opts Options
		msg  string
	}{
		{"empty", nil, Options{}, "no header row"},
		{"all skipped", sheet, Options{SkipRows: 10}, "no header row"},
		{"narrow header", [][]string{{"Question", "Start_Doing"}}, Options{}, "expected 4 columns"},
		{"negative start", sheet, Options{StartIndex: -1}, ">= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.rows, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	res, err := Parse([][]string{Columns}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Questions)
	assert.Empty(t, res.Docs)
}

func TestReadFile_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Growth Tips.csv")
	content := "\ufeffGrowth Tips,,,\n" +
		"Question,Start_Doing,Do_More,Keep_Doing\n" +
		"\"Do you track margins?\",\"Start, today.\",,Keep going.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := ReadFile(context.Background(), path, Options{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []model.AdviceDoc{
		{QuestionID: "question_00", Category: model.StartDoing, Text: "Start, today."},
		{QuestionID: "question_00", Category: model.KeepDoing, Text: "Keep going."},
	}, res.Docs)
}

func TestReadFile_XLSX(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sh, err := f.AddSheet("Tips")
	require.NoError(t, err)
	for _, rowData := range sheet {
		row := sh.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "tips.xlsx")
	require.NoError(t, f.Save(path))

	res, err := ReadFile(context.Background(), path, Options{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Questions)
	assert.Len(t, res.Docs, 6)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(context.Background(), "tips.json", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Error(t, err)
}
