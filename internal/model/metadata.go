package model

import "encoding/json"

// Metadata is the per-type payload carried by a dependency. The shape is
// fixed by the dependency type, not by the caller: awaits edges carry a
// GateMeta, validates edges carry a TestMeta, and every other type carries
// an opaque ExtraMeta (or nothing).
type Metadata interface {
	metadata()
}

// GateMeta wraps the gate condition of an awaits edge.
type GateMeta struct {
	Gate Gate
}

func (GateMeta) metadata() {}

// MarshalJSON flattens the gate into the metadata object.
func (m GateMeta) MarshalJSON() ([]byte, error) {
	return EncodeGate(m.Gate)
}

// UnmarshalJSON decodes the gate union from the metadata object.
func (m *GateMeta) UnmarshalJSON(data []byte) error {
	g, err := DecodeGate(data)
	if err != nil {
		return err
	}
	m.Gate = g
	return nil
}

// TestResult is the outcome recorded on a validates edge.
type TestResult string

const (
	ResultPass TestResult = "pass"
	ResultFail TestResult = "fail"
)

// IsValid checks whether the result is a known value.
func (r TestResult) IsValid() bool {
	return r == ResultPass || r == ResultFail
}

// TestMeta carries the test evidence of a validates edge. TestType is an
// open string; unit, integration, manual, e2e, and property are conventional.
type TestMeta struct {
	TestType string     `json:"test_type"`
	Result   TestResult `json:"result"`
	Details  string     `json:"details,omitempty"`
}

func (TestMeta) metadata() {}

// ExtraMeta is the opaque key/value payload accepted on dependency types
// with no required metadata shape.
type ExtraMeta map[string]any

func (ExtraMeta) metadata() {}

// DecodeMetadata parses raw metadata according to the dependency type. For
// awaits and validates edges the payload must match the type's schema; for
// everything else any JSON object is accepted. Empty input yields nil.
func DecodeMetadata(t DependencyType, raw []byte) (Metadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case DepAwaits:
		var m GateMeta
		if err := m.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return m, nil
	case DepValidates:
		var m TestMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, &ValidationError{Errors: []FieldError{{
				Field:    "metadata",
				Expected: "must match the validates schema (test_type, result, details)",
			}}}
		}
		return m, nil
	}
	var m ExtraMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{
			Field:    "metadata",
			Expected: "must be a JSON object",
		}}}
	}
	return m, nil
}

// EncodeMetadata renders metadata to JSON for storage and transport.
// nil metadata encodes as nil.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
