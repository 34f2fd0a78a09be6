package rules

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Basic(t *testing.T) {
	t.Parallel()

	input := "Question,Rule1,Rule2\nq1,R1 - A or B,R2 - Yes\nq2,R3 - No,\n"
	tbl, err := Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, tbl, 2)
	assert.Equal(t, []string{"R1 - A or B", "R2 - Yes"}, tbl["q1"])
	assert.Equal(t, []string{"R3 - No", ""}, tbl["q2"])
}

func TestLoad_SkipsHeaderWithBOM(t *testing.T) {
	t.Parallel()

	input := "\ufeffQuestion,Rule1\nq1,R1 - A\n"
	tbl, err := Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, tbl, 1)
	_, ok := tbl.Get("Question")
	assert.False(t, ok)
	rules, ok := tbl.Get("q1")
	require.True(t, ok)
	assert.Equal(t, []string{"R1 - A"}, rules)
}

func TestLoad_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	input := "k,r\nq1,R1 - A,R2 - B\nq1,R9 - Z\n"
	tbl, err := Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"R9 - Z"}, tbl["q1"])
}

func TestLoad_KeyOnlyRow(t *testing.T) {
	t.Parallel()

	tbl, err := Load(context.Background(), strings.NewReader("k,r\nq1\n"))
	require.NoError(t, err)

	rules, ok := tbl.Get("q1")
	require.True(t, ok)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestLoad_HeaderOnly(t *testing.T) {
	t.Parallel()

	tbl, err := Load(context.Background(), strings.NewReader("Question,Rule1\n"))
	require.NoError(t, err)
	assert.Empty(t, tbl)
}

func TestLoad_StrayQuote(t *testing.T) {
	t.Parallel()

	input := "question_id,rule1,rule2\nquestion_00,R2 - \"Yes\" or No,R1 - A\nquestion_01,R3 - B\n"
	tbl, err := Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{`R2 - "Yes" or No`, "R1 - A"}, tbl["question_00"])
	assert.Equal(t, []string{"R3 - B"}, tbl["question_01"])
	assert.Equal(t, 1, CountSatisfied(tbl["question_00"], offering("R2", "no")))
}

func TestLoad_ReadError(t *testing.T) {
	t.Parallel()

	r := io.MultiReader(strings.NewReader("k,r\nq1,R1 - A\n"), iotest.ErrReader(errors.New("disk gone")))
	_, err := Load(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.csv")
	require.NoError(t, os.WriteFile(path, []byte("k,r\nq1,R1 - A\n"), 0o644))

	tbl, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"R1 - A"}, tbl["q1"])
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
