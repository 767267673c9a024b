// internal/engine/policy.go
package engine

import "intentrisk-workers/internal/classifier"

// ApplicationStatus is the outward-facing application state driven by an
// interview decision.
type ApplicationStatus string

const (
	StatusApproved       ApplicationStatus = "approved"
	StatusRejected       ApplicationStatus = "rejected"
	StatusVerifyRequired ApplicationStatus = "verify_required"
)

// InterviewDecision maps a classifier label onto the interview-facing
// decision name and the application status it drives. The interview path
// presents PROCEED as APPROVE; the underlying label set never changes.
// Pure function, no side effects — persistence happens elsewhere.
func InterviewDecision(label classifier.Label) (decision string, status ApplicationStatus) {
	switch label {
	case classifier.LabelProceed:
		return "APPROVE", StatusApproved
	case classifier.LabelReject:
		return "REJECT", StatusRejected
	default:
		return "VERIFY", StatusVerifyRequired
	}
}

// CallIntent maps a classifier label for the call path: the label is
// stored as-is and no status transition is forced beyond recording the
// analysis.
func CallIntent(label classifier.Label) string {
	return string(label)
}
