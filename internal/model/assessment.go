// Package model defines the assessment payload and advice types.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
)

// ServiceOfferingKey is the section that carries profile and rule-matching
// answers rather than scored questions.
const ServiceOfferingKey = "serviceOffering"

// SchemaError reports a payload that is well-formed JSON but does not have
// the shape the pipeline needs.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Entry is a keyed answer inside a section.
type Entry struct {
	Key   string
	Field AnswerField
}

// ServiceOffering holds the service-offering section in payload order.
type ServiceOffering struct {
	Entries []Entry
}

// Get returns the entry stored under key.
func (s ServiceOffering) Get(key string) (AnswerField, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Field, true
		}
	}
	return AnswerField{}, false
}

// Section is a named group of questions in payload order.
type Section struct {
	Name    string
	Entries []Entry
}

// Assessment is the questionnaire payload. JSON key order is significant:
// questions are numbered in the order they appear.
type Assessment struct {
	ServiceOffering ServiceOffering
	Sections        []Section
}

// Questions flattens every non-service-offering section in intake order.
func (a *Assessment) Questions() []AnswerField {
	var out []AnswerField
	for _, s := range a.Sections {
		for _, e := range s.Entries {
			out = append(out, e.Field)
		}
	}
	return out
}

// UnmarshalJSON decodes the payload preserving object key order. Sections and
// entries that are not JSON objects are ignored.
func (a *Assessment) UnmarshalJSON(data []byte) error {
	top, err := decodeOrdered(data)
	if err != nil {
		return &SchemaError{Field: "assessmentData", Reason: err.Error()}
	}

	var out Assessment
	seenOffering := false
	for _, kv := range top {
		if kv.key == ServiceOfferingKey {
			entries, err := decodeEntries(kv.key, kv.value)
			if err != nil {
				return err
			}
			if entries == nil {
				return &SchemaError{Field: ServiceOfferingKey, Reason: "must be an object"}
			}
			out.ServiceOffering = ServiceOffering{Entries: entries}
			seenOffering = true
			continue
		}

		entries, err := decodeEntries(kv.key, kv.value)
		if err != nil {
			return err
		}
		if entries == nil {
			continue
		}
		out.Sections = append(out.Sections, Section{Name: kv.key, Entries: entries})
	}

	if !seenOffering {
		return &SchemaError{Field: ServiceOfferingKey, Reason: "is required"}
	}

	*a = out
	return nil
}

// MarshalJSON writes the payload back out with its original ordering.
func (a Assessment) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	if err := writeSection(&b, ServiceOfferingKey, a.ServiceOffering.Entries); err != nil {
		return nil, err
	}
	for _, s := range a.Sections {
		b.WriteByte(',')
		if err := writeSection(&b, s.Name, s.Entries); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeSection(b *bytes.Buffer, name string, entries []Entry) error {
	key, _ := json.Marshal(name)
	b.Write(key)
	b.WriteString(":{")
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(e.Key)
		v, err := json.Marshal(e.Field)
		if err != nil {
			return eris.Wrapf(err, "model: marshal entry %s.%s", name, e.Key)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return nil
}

// decodeEntries returns nil (without error) when raw is not an object.
func decodeEntries(section string, raw json.RawMessage) ([]Entry, error) {
	if !isObject(raw) {
		return nil, nil
	}
	kvs, err := decodeOrdered(raw)
	if err != nil {
		return nil, &SchemaError{Field: section, Reason: err.Error()}
	}

	entries := make([]Entry, 0, len(kvs))
	for _, kv := range kvs {
		if !isObject(kv.value) {
			continue
		}
		var f AnswerField
		if err := json.Unmarshal(kv.value, &f); err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				return nil, &SchemaError{Field: section + "." + kv.key + "." + se.Field, Reason: se.Reason}
			}
			return nil, &SchemaError{Field: section + "." + kv.key, Reason: err.Error()}
		}
		entries = append(entries, Entry{Key: kv.key, Field: f})
	}
	return entries, nil
}

type keyedRaw struct {
	key   string
	value json.RawMessage
}

// decodeOrdered reads a JSON object into key/value pairs in document order.
// A repeated key keeps its first position and its last value.
func decodeOrdered(data []byte) ([]keyedRaw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, eris.New("must be an object")
	}

	var out []keyedRaw
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, eris.New("expected object key")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if i, dup := index[key]; dup {
			out[i].value = v
			continue
		}
		index[key] = len(out)
		out = append(out, keyedRaw{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
