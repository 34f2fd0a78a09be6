package pipeline

import (
	"sort"
	"strings"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// ReportHeader opens every report.
const ReportHeader = "Based on your assessment results, here are your business recommendations:"

// FormatReport groups results by phase (fixed order) and category (sorted)
// and renders them as plain text. Results with an unknown phase or an empty
// category are left out; phases with nothing to show are omitted.
func FormatReport(results []model.AdviceResult) string {
	grouped := make(map[model.Phase]map[string][]model.AdviceResult, len(model.PhaseOrder))
	for _, r := range results {
		phase := model.Phase(r.PhaseMapping)
		if phase.Title() == "" || r.Category == "" {
			continue
		}
		if grouped[phase] == nil {
			grouped[phase] = make(map[string][]model.AdviceResult)
		}
		grouped[phase][r.Category] = append(grouped[phase][r.Category], r)
	}

	var b strings.Builder
	b.WriteString(ReportHeader)
	b.WriteString("\n\n")

	for _, phase := range model.PhaseOrder {
		cats := grouped[phase]
		if len(cats) == 0 {
			continue
		}

		b.WriteString("=== " + phase.Title() + " ===\n")

		names := make([]string, 0, len(cats))
		for c := range cats {
			names = append(names, c)
		}
		sort.Strings(names)

		for _, c := range names {
			b.WriteString("\n【" + c + "】\n")
			for _, r := range cats[c] {
				b.WriteString("- " + r.Question + "\n")
				b.WriteString("  " + r.Advice + "\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
