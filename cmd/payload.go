package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// readPayload loads an assessment from a saved request. Both the full
// /api/llm-advice body and bare assessment data are accepted.
func readPayload(path string) (*model.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read payload %s", path)
	}

	var envelope struct {
		AssessmentData json.RawMessage `json:"assessmentData"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, eris.Wrapf(err, "parse payload %s", path)
	}
	if len(envelope.AssessmentData) > 0 {
		data = envelope.AssessmentData
	}

	var a model.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrapf(err, "decode assessment %s", path)
	}
	return &a, nil
}
