package graph

import (
	"fmt"
	"time"

	"github.com/loomworks/loom/internal/model"
)

// Resolution is the outcome of evaluating a gate.
type Resolution struct {
	Satisfied bool   `json:"satisfied"`
	Reason    string `json:"reason,omitempty"`
}

// ResolveGate evaluates whether a gate is currently satisfied. It is a pure
// function of the gate and now; timer gates in particular must be
// re-evaluated on every query, never cached. Malformed or unknown gates
// fail closed: unsatisfied with an integrity reason, never an error that
// would abort readiness computation for unrelated elements.
func ResolveGate(g model.Gate, now time.Time) Resolution {
	switch gate := g.(type) {
	case model.TimerGate:
		// Exact equality counts as satisfied.
		if !now.Before(gate.WaitUntil) {
			return Resolution{Satisfied: true}
		}
		return Resolution{Reason: "waiting until " + gate.WaitUntil.Format(time.RFC3339)}

	case model.ApprovalGate:
		have := requiredApprovals(gate)
		need := gate.Threshold()
		if have >= need {
			return Resolution{Satisfied: true}
		}
		return Resolution{Reason: fmt.Sprintf("%d of %d required approvals", have, need)}

	case model.ExternalGate:
		if gate.Satisfied {
			return Resolution{Satisfied: true}
		}
		return Resolution{Reason: fmt.Sprintf("awaiting %s:%s", gate.System, gate.ExternalID)}

	case model.WebhookGate:
		if gate.Satisfied {
			return Resolution{Satisfied: true}
		}
		return Resolution{Reason: "awaiting webhook callback"}

	case nil:
		return Resolution{Reason: "malformed gate metadata: no gate present"}

	default:
		return Resolution{Reason: fmt.Sprintf("malformed gate metadata: unknown kind %q", g.Kind())}
	}
}

// requiredApprovals counts distinct current approvers that are members of
// the required set. Approvers outside the set are ignored.
func requiredApprovals(g model.ApprovalGate) int {
	required := make(map[string]bool, len(g.RequiredApprovers))
	for _, a := range g.RequiredApprovers {
		required[a] = true
	}
	counted := make(map[string]bool, len(g.CurrentApprovers))
	n := 0
	for _, a := range g.CurrentApprovers {
		if required[a] && !counted[a] {
			counted[a] = true
			n++
		}
	}
	return n
}
