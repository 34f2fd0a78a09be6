package rules

import (
	"strings"
	"unicode"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// Rule is a parsed rule string: the service-offering question it inspects
// and the lowercased options that satisfy it.
type Rule struct {
	Subject string
	Options map[string]struct{}
}

// Matches reports whether selected (case-insensitive) is one of the options.
func (r Rule) Matches(selected string) bool {
	_, ok := r.Options[strings.ToLower(selected)]
	return ok
}

// Parse splits a raw rule of the form "Subject - OptA or OptB" on its first
// '-'. All whitespace is removed from the option list before it is split on
// the literal "or". Strings without a '-' or with an empty subject are not
// rules.
func Parse(raw string) (Rule, bool) {
	subject, opts, ok := strings.Cut(raw, "-")
	if !ok || strings.TrimSpace(subject) == "" {
		return Rule{}, false
	}

	squashed := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, opts)

	rule := Rule{
		Subject: strings.TrimSpace(subject),
		Options: make(map[string]struct{}),
	}
	for _, o := range strings.Split(squashed, "or") {
		rule.Options[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}
	return rule, true
}

// CountSatisfied returns how many of raw are satisfied by the offering. For
// each rule only the first entry whose question name equals the rule subject
// is consulted. Malformed rules and unknown subjects count as unsatisfied.
func CountSatisfied(raw []string, offering model.ServiceOffering) int {
	n := 0
	for _, s := range raw {
		rule, ok := Parse(s)
		if !ok {
			continue
		}
		for _, e := range offering.Entries {
			if e.Field.QuestionName != rule.Subject {
				continue
			}
			if rule.Matches(e.Field.SelectedOption) {
				n++
			}
			break
		}
	}
	return n
}
