package model

import "fmt"

// AdviceCategory is the bucket a weighted score falls into. The string values
// double as the category key of stored baseline advice.
type AdviceCategory string

// Advice categories.
const (
	StartDoing AdviceCategory = "Start_Doing"
	DoMore     AdviceCategory = "Do_More"
	KeepDoing  AdviceCategory = "Keep_Doing"
)

// AdviceCategories lists every category in tips-sheet column order.
var AdviceCategories = []AdviceCategory{StartDoing, DoMore, KeepDoing}

// Valid reports whether c is one of the known categories.
func (c AdviceCategory) Valid() bool {
	switch c {
	case StartDoing, DoMore, KeepDoing:
		return true
	}
	return false
}

// Phase is the pipeline stage a question maps to.
type Phase string

// Phases in display order.
const (
	PhaseProfitable Phase = "Profitable"
	PhaseRepeatable Phase = "Repeatable"
	PhaseScalable   Phase = "Scalable"
)

// PhaseOrder is the fixed report order.
var PhaseOrder = []Phase{PhaseProfitable, PhaseRepeatable, PhaseScalable}

// Title returns the section heading used in reports, e.g. "Phase 1 (Profitable)".
// Unknown phases return "".
func (p Phase) Title() string {
	for i, known := range PhaseOrder {
		if p == known {
			return fmt.Sprintf("Phase %d (%s)", i+1, p)
		}
	}
	return ""
}

// NotAvailable is the placeholder for profile values the payload did not supply.
const NotAvailable = "N/A"

// BusinessProfile summarizes the respondent's business. It is built once per
// request and shared read-only by every advice call.
type BusinessProfile struct {
	Industry          string `json:"industry"`
	BusinessChallenge string `json:"business_challenge"`
	ServiceType       string `json:"service_type"`
	RevenueType       string `json:"revenue_type"`
}

// NewBusinessProfile returns a profile with every field set to NotAvailable.
func NewBusinessProfile() BusinessProfile {
	return BusinessProfile{
		Industry:          NotAvailable,
		BusinessChallenge: NotAvailable,
		ServiceType:       NotAvailable,
		RevenueType:       NotAvailable,
	}
}

// ScoredQuestion is a question with its synthetic id, weighting and category
// attached. The source AnswerField is copied, never mutated.
type ScoredQuestion struct {
	Field          AnswerField    `json:"field"`
	QuestionID     string         `json:"question_id"`
	SatisfiedRules int            `json:"satisfied_rules"`
	WeightedScore  float64        `json:"weighted_score"`
	Category       AdviceCategory `json:"derived_category"`
}

// QuestionID formats the positional id for the idx-th question (0-based).
func QuestionID(idx int) string {
	return fmt.Sprintf("question_%02d", idx)
}

// AdviceResult is the generated advice for one question.
type AdviceResult struct {
	PhaseMapping string `json:"phase_mapping"`
	Category     string `json:"category"`
	Question     string `json:"question"`
	Advice       string `json:"advice"`
}

// AdviceDoc is a baseline advice record in the document store.
type AdviceDoc struct {
	ID         string         `json:"id" bson:"id"`
	QuestionID string         `json:"question_id" bson:"question_id"`
	Category   AdviceCategory `json:"category" bson:"category"`
	Text       string         `json:"text" bson:"text"`
}
