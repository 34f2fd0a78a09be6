package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// AnswerField is a single questionnaire response. The same shape carries
// service-offering entries (flat {text} records or rule-matching answers) and
// the scored questions of every other section.
type AnswerField struct {
	Question       string   `json:"question,omitempty"`
	Answer         string   `json:"answer,omitempty"`
	AdditionalText string   `json:"additionalText,omitempty"`
	QuestionName   string   `json:"questionName,omitempty"`
	SelectedOption string   `json:"selectedOption,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	Category       string   `json:"category,omitempty"`
	PhaseMapping   string   `json:"phaseMapping,omitempty"`
	Text           *string  `json:"text,omitempty"`

	// Extra keeps keys the pipeline does not read so a decoded payload can be
	// re-encoded without loss.
	Extra map[string]json.RawMessage `json:"-"`
}

// fieldAliases maps the legacy frontend spellings to canonical keys. When a
// payload carries both, the canonical key wins.
var fieldAliases = map[string]string{
	"anwser":        "answer",
	"question_name": "questionName",
	"anwserselete":  "selectedOption",
	"catmapping":    "phaseMapping",
}

// UnmarshalJSON decodes an answer accepting both canonical and legacy keys.
func (f *AnswerField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	resolved := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if canon, ok := fieldAliases[k]; ok {
			if _, dup := raw[canon]; dup {
				continue
			}
			k = canon
		}
		resolved[k] = v
	}

	var out AnswerField
	for k, v := range resolved {
		var err error
		switch k {
		case "question":
			err = decodeString(v, &out.Question)
		case "answer":
			err = decodeString(v, &out.Answer)
		case "additionalText":
			err = decodeString(v, &out.AdditionalText)
		case "questionName":
			err = decodeString(v, &out.QuestionName)
		case "selectedOption":
			err = decodeString(v, &out.SelectedOption)
		case "category":
			err = decodeString(v, &out.Category)
		case "phaseMapping":
			err = decodeString(v, &out.PhaseMapping)
		case "score":
			err = json.Unmarshal(v, &out.Score)
		case "text":
			err = json.Unmarshal(v, &out.Text)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[k] = v
			continue
		}
		if err != nil {
			return &SchemaError{Field: k, Reason: err.Error()}
		}
	}

	*f = out
	return nil
}

// MarshalJSON writes canonical keys followed by the preserved extra keys.
func (f AnswerField) MarshalJSON() ([]byte, error) {
	type plain AnswerField
	base, err := json.Marshal(plain(f))
	if err != nil {
		return nil, eris.Wrap(err, "model: marshal answer")
	}
	if len(f.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, eris.Wrap(err, "model: merge answer extras")
	}
	for k, v := range f.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// RawScore returns the submitted score, or 0 when none was given.
func (f AnswerField) RawScore() float64 {
	if f.Score == nil {
		return 0
	}
	return *f.Score
}

// decodeString accepts a JSON string or null.
func decodeString(v json.RawMessage, dst *string) error {
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return eris.New("expected a string")
	}
	if s != nil {
		*dst = *s
	}
	return nil
}
