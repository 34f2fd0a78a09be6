// Package profile derives the business profile shared by every advice call
// from the service-offering section of an assessment.
package profile

import (
	"strings"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// Keys of the flat {text} records in the service offering.
const (
	IndustryKey          = "industry"
	BusinessChallengeKey = "business-challenge"
)

// Question fragments that identify the service and revenue type answers.
const (
	serviceTypeMarker = "what you offer"
	revenueTypeMarker = "revenue do you mainly have"
)

// Extract builds a BusinessProfile. Fields the payload does not supply are
// model.NotAvailable. When several entries match a marker the last one wins.
func Extract(offering model.ServiceOffering) model.BusinessProfile {
	p := model.NewBusinessProfile()

	if f, ok := offering.Get(IndustryKey); ok && f.Text != nil {
		p.Industry = *f.Text
	}
	if f, ok := offering.Get(BusinessChallengeKey); ok && f.Text != nil {
		p.BusinessChallenge = *f.Text
	}

	for _, e := range offering.Entries {
		q := strings.ToLower(e.Field.Question)
		switch {
		case strings.Contains(q, serviceTypeMarker):
			p.ServiceType = combine(e.Field)
		case strings.Contains(q, revenueTypeMarker):
			p.RevenueType = combine(e.Field)
		}
	}
	return p
}

// combine renders "answer: additional text" with surrounding whitespace and
// colons removed, so a missing half leaves no dangling separator.
func combine(f model.AnswerField) string {
	s := strings.TrimSpace(f.Answer + ": " + f.AdditionalText)
	s = strings.Trim(s, ":")
	return strings.TrimSpace(s)
}
