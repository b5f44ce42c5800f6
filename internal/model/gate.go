package model

import (
	"encoding/json"
	"time"
)

// GateKind discriminates the gate variants an awaits edge may carry.
type GateKind string

const (
	GateTimer    GateKind = "timer"
	GateApproval GateKind = "approval"
	GateExternal GateKind = "external"
	GateWebhook  GateKind = "webhook"
)

// String returns the string representation of the gate kind.
func (k GateKind) String() string {
	return string(k)
}

// IsValid checks whether the gate kind is a known value.
func (k GateKind) IsValid() bool {
	switch k {
	case GateTimer, GateApproval, GateExternal, GateWebhook:
		return true
	}
	return false
}

// Gate is the condition attached to an awaits dependency. Exactly one
// variant exists per kind; resolution logic lives in the graph package and
// consumes the union by type switch.
type Gate interface {
	Kind() GateKind
	gate()
}

// TimerGate is satisfied once the wall clock reaches WaitUntil (inclusive).
// It is a pure function of time and is re-evaluated on every query.
type TimerGate struct {
	WaitUntil time.Time `json:"wait_until"`
}

func (TimerGate) Kind() GateKind { return GateTimer }
func (TimerGate) gate()          {}

// ApprovalGate is satisfied once enough of the required approvers have
// approved. ApprovalCount zero means all required approvers. Approvers
// outside the required set are recorded but never counted.
type ApprovalGate struct {
	RequiredApprovers []string `json:"required_approvers"`
	ApprovalCount     int      `json:"approval_count,omitempty"`
	CurrentApprovers  []string `json:"current_approvers,omitempty"`
}

func (ApprovalGate) Kind() GateKind { return GateApproval }
func (ApprovalGate) gate()          {}

// Threshold returns the effective number of required approvals.
func (g ApprovalGate) Threshold() int {
	if g.ApprovalCount > 0 {
		return g.ApprovalCount
	}
	return len(g.RequiredApprovers)
}

// ExternalGate is satisfied only when an external system records
// satisfaction via the gate-satisfaction operation.
type ExternalGate struct {
	System      string     `json:"external_system"`
	ExternalID  string     `json:"external_id"`
	Satisfied   bool       `json:"satisfied,omitempty"`
	SatisfiedAt *time.Time `json:"satisfied_at,omitempty"`
	SatisfiedBy string     `json:"satisfied_by,omitempty"`
}

func (ExternalGate) Kind() GateKind { return GateExternal }
func (ExternalGate) gate()          {}

// WebhookGate is satisfied only when the registered callback records
// satisfaction. URL and CallbackID are both optional.
type WebhookGate struct {
	URL         string     `json:"webhook_url,omitempty"`
	CallbackID  string     `json:"callback_id,omitempty"`
	Satisfied   bool       `json:"satisfied,omitempty"`
	SatisfiedAt *time.Time `json:"satisfied_at,omitempty"`
	SatisfiedBy string     `json:"satisfied_by,omitempty"`
}

func (WebhookGate) Kind() GateKind { return GateWebhook }
func (WebhookGate) gate()          {}

// EncodeGate renders a gate as a JSON object with the variant's fields
// flattened beside a gate_type discriminator.
func EncodeGate(g Gate) ([]byte, error) {
	if g == nil {
		return nil, &ValidationError{Errors: []FieldError{{
			Field:    "metadata.gate_type",
			Expected: "is required on awaits edges",
		}}}
	}
	fields, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := json.Unmarshal(fields, &m); err != nil {
		return nil, err
	}
	m["gate_type"] = string(g.Kind())
	return json.Marshal(m)
}

// DecodeGate parses a gate object, dispatching on the gate_type
// discriminator. Unknown or missing discriminators fail validation; they
// are never decoded into a gate that could report satisfied.
func DecodeGate(raw []byte) (Gate, error) {
	var head struct {
		GateType GateKind `json:"gate_type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{
			Field:    "metadata",
			Expected: "must be a JSON object",
		}}}
	}
	switch head.GateType {
	case GateTimer:
		var g TimerGate
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, gateFieldError(head.GateType, err)
		}
		return g, nil
	case GateApproval:
		var g ApprovalGate
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, gateFieldError(head.GateType, err)
		}
		return g, nil
	case GateExternal:
		var g ExternalGate
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, gateFieldError(head.GateType, err)
		}
		return g, nil
	case GateWebhook:
		var g WebhookGate
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, gateFieldError(head.GateType, err)
		}
		return g, nil
	}
	return nil, &ValidationError{Errors: []FieldError{{
		Field:    "metadata.gate_type",
		Value:    string(head.GateType),
		Expected: "must be one of timer, approval, external, webhook",
	}}}
}

func gateFieldError(kind GateKind, err error) error {
	return &ValidationError{Errors: []FieldError{{
		Field:    "metadata",
		Value:    string(kind),
		Expected: "gate fields must match the " + string(kind) + " schema: " + err.Error(),
	}}}
}
