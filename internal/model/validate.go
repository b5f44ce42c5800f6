package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure: the offending field,
// the value it held, and the expected shape or range.
type FieldError struct {
	Field    string `json:"field"`
	Value    any    `json:"value,omitempty"`
	Expected string `json:"expected"`
}

// Error formats the validation error as a semicolon-separated list of field
// failures.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		if fe.Value != nil {
			parts[i] = fmt.Sprintf("%s: got %v, %s", fe.Field, fe.Value, fe.Expected)
		} else {
			parts[i] = fe.Field + ": " + fe.Expected
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateElement checks an Element for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the element is valid.
func ValidateElement(el *Element) error {
	var ve ValidationError

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(el.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Expected: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "title",
			Expected: "must be 500 characters or fewer",
		})
	}

	// Status: must be a valid enum value (closed set).
	if !el.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "status",
			Value:    string(el.Status),
			Expected: "must be one of open, in_progress, completed, cancelled",
		})
	}

	// Type: must be non-empty (element types are extensible).
	if strings.TrimSpace(string(el.Type)) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "type", Expected: "is required"})
	}

	// ClosedAt consistency with Status.
	if el.Status.Terminal() && el.ClosedAt == nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "closed_at",
			Expected: "is required when status is terminal",
		})
	}
	if !el.Status.Terminal() && el.ClosedAt != nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "closed_at",
			Expected: "must be nil when status is not terminal",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateDependency checks a candidate Dependency for constraint
// violations: identifier presence, self-reference, taxonomy membership, and
// the per-type metadata shape. It returns a *ValidationError if any rules
// fail, or nil if the dependency is valid.
func ValidateDependency(d *Dependency) error {
	var ve ValidationError

	if strings.TrimSpace(d.SourceID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "source_id", Expected: "is required"})
	}
	if strings.TrimSpace(d.TargetID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "target_id", Expected: "is required"})
	}

	// Self-reference is forbidden for every type.
	if d.SourceID != "" && d.SourceID == d.TargetID {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "target_id",
			Value:    d.TargetID,
			Expected: "must differ from source_id (self-reference forbidden)",
		})
	}

	if !d.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "type",
			Value:    string(d.Type),
			Expected: fmt.Sprintf("must be one of %v", DependencyTypes()),
		})
	}

	if strings.TrimSpace(d.CreatedBy) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "created_by", Expected: "is required"})
	}

	validateMetadata(d, &ve)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// validateMetadata enforces the per-type metadata shape: awaits edges must
// carry exactly one well-formed gate, validates edges must carry a test
// result, and every other type accepts an opaque map or nothing.
func validateMetadata(d *Dependency, ve *ValidationError) {
	switch d.Type {
	case DepAwaits:
		gm, ok := d.Meta.(GateMeta)
		if !ok {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata",
				Expected: "awaits edges require gate metadata (gate_type and kind-specific fields)",
			})
			return
		}
		validateGate(gm.Gate, ve)
	case DepValidates:
		tm, ok := d.Meta.(TestMeta)
		if !ok {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata",
				Expected: "validates edges require test metadata (test_type, result)",
			})
			return
		}
		if strings.TrimSpace(tm.TestType) == "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.test_type",
				Expected: "is required",
			})
		}
		if !tm.Result.IsValid() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.result",
				Value:    string(tm.Result),
				Expected: "must be pass or fail",
			})
		}
	default:
		switch d.Meta.(type) {
		case nil, ExtraMeta:
		default:
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata",
				Value:    string(d.Type),
				Expected: "gate and test metadata are only valid on awaits and validates edges",
			})
		}
	}
}

func validateGate(g Gate, ve *ValidationError) {
	switch gate := g.(type) {
	case TimerGate:
		if gate.WaitUntil.IsZero() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.wait_until",
				Expected: "is required for timer gates",
			})
		}
	case ApprovalGate:
		if len(gate.RequiredApprovers) == 0 {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.required_approvers",
				Expected: "must be a non-empty array for approval gates",
			})
		}
		if gate.ApprovalCount != 0 &&
			(gate.ApprovalCount < 1 || gate.ApprovalCount > len(gate.RequiredApprovers)) {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.approval_count",
				Value:    gate.ApprovalCount,
				Expected: fmt.Sprintf("must be between 1 and %d", len(gate.RequiredApprovers)),
			})
		}
	case ExternalGate:
		if strings.TrimSpace(gate.System) == "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.external_system",
				Expected: "is required for external gates",
			})
		}
		if strings.TrimSpace(gate.ExternalID) == "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:    "metadata.external_id",
				Expected: "is required for external gates",
			})
		}
	case WebhookGate:
		// No required fields: webhook_url and callback_id are both optional.
	default:
		ve.Errors = append(ve.Errors, FieldError{
			Field:    "metadata.gate_type",
			Expected: "must be one of timer, approval, external, webhook",
		})
	}
}
