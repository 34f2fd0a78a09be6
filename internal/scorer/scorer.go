// Package scorer weights raw question scores by the number of satisfied
// service-offering rules and buckets the result into an advice category.
package scorer

import "github.com/sells-group/assessment-advisor/internal/model"

const (
	// WeightStep is added to the base weight of 1 per satisfied rule.
	WeightStep = 0.25

	// StartDoingBelow and KeepDoingAbove bound the Do_More band. Both bounds
	// are exclusive: a weighted score of exactly ±1 is Do_More.
	StartDoingBelow = -1.0
	KeepDoingAbove  = 1.0
)

// Weight returns the multiplier for count satisfied rules. There is no cap.
func Weight(count int) float64 {
	if count <= 0 {
		return 1
	}
	return 1 + WeightStep*float64(count)
}

// Categorize maps a weighted score to its category. NaN falls through to
// Do_More.
func Categorize(weighted float64) model.AdviceCategory {
	switch {
	case weighted < StartDoingBelow:
		return model.StartDoing
	case weighted > KeepDoingAbove:
		return model.KeepDoing
	default:
		return model.DoMore
	}
}

// Score weights raw by count and categorizes the result.
func Score(raw float64, count int) (float64, model.AdviceCategory) {
	w := raw * Weight(count)
	return w, Categorize(w)
}
