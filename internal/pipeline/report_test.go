package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/assessment-advisor/internal/model"
)

func TestFormatReport_Empty(t *testing.T) {
	assert.Equal(t, ReportHeader+"\n\n", FormatReport(nil))
}

func TestFormatReport_CategoriesSortedWithinPhase(t *testing.T) {
	report := FormatReport([]model.AdviceResult{
		{PhaseMapping: "Profitable", Category: "Sales", Question: "S?", Advice: "s"},
		{PhaseMapping: "Profitable", Category: "Marketing", Question: "M?", Advice: "m"},
	})

	assert.Equal(t, 1, strings.Count(report, "=== Phase 1 (Profitable) ==="))
	m := strings.Index(report, "【Marketing】")
	s := strings.Index(report, "【Sales】")
	assert.True(t, m > 0 && s > m, "Marketing must precede Sales")
}

func TestFormatReport_PhaseOrder(t *testing.T) {
	report := FormatReport([]model.AdviceResult{
		{PhaseMapping: "Scalable", Category: "Ops", Question: "3", Advice: "c"},
		{PhaseMapping: "Profitable", Category: "Ops", Question: "1", Advice: "a"},
		{PhaseMapping: "Repeatable", Category: "Ops", Question: "2", Advice: "b"},
	})

	p1 := strings.Index(report, "Phase 1 (Profitable)")
	p2 := strings.Index(report, "Phase 2 (Repeatable)")
	p3 := strings.Index(report, "Phase 3 (Scalable)")
	assert.True(t, p1 < p2 && p2 < p3)
}

func TestFormatReport_DropsUnknownPhaseAndEmptyCategory(t *testing.T) {
	base := []model.AdviceResult{
		{PhaseMapping: "Profitable", Category: "Marketing", Question: "kept", Advice: "a"},
	}
	dropped := append(append([]model.AdviceResult{}, base...),
		model.AdviceResult{PhaseMapping: "Unknown", Category: "Marketing", Question: "ghost", Advice: "x"},
		model.AdviceResult{PhaseMapping: "Profitable", Category: "", Question: "blank", Advice: "y"},
		model.AdviceResult{PhaseMapping: "profitable", Category: "Marketing", Question: "lower", Advice: "z"},
	)

	assert.Equal(t, FormatReport(base), FormatReport(dropped))
}

func TestFormatReport_ItemsKeepInputOrder(t *testing.T) {
	report := FormatReport([]model.AdviceResult{
		{PhaseMapping: "Profitable", Category: "Sales", Question: "second-id", Advice: "b"},
		{PhaseMapping: "Profitable", Category: "Sales", Question: "first-id", Advice: "a"},
	})
	assert.Less(t, strings.Index(report, "second-id"), strings.Index(report, "first-id"))
}

func TestFormatReport_ExactLayout(t *testing.T) {
	report := FormatReport([]model.AdviceResult{
		{PhaseMapping: "Repeatable", Category: "Ops", Question: "Q1", Advice: "A1"},
	})
	assert.Equal(t,
		"Based on your assessment results, here are your business recommendations:\n\n"+
			"=== Phase 2 (Repeatable) ===\n"+
			"\n【Ops】\n"+
			"- Q1\n  A1\n"+
			"\n",
		report)
}
