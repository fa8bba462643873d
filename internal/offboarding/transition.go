package offboarding

import "fmt"

// ValidateTransition checks whether transitioning from current to target is
// allowed according to the given transition map. It returns nil if the
// transition is valid, or an error wrapping ErrConflict otherwise.
func ValidateTransition(transitions map[string][]string, current, target string) error {
	allowed, ok := transitions[current]
	if !ok {
		return fmt.Errorf("unknown current state %q: %w", current, ErrConflict)
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return fmt.Errorf("transition from %q to %q is not allowed: %w", current, target, ErrConflict)
}

// terminableStatuses returns the lease statuses that may move to terminated.
func terminableStatuses() []LeaseStatus {
	var out []LeaseStatus
	for _, st := range []LeaseStatus{
		LeaseStatusDraft,
		LeaseStatusActive,
		LeaseStatusMonthToMonthHoldover,
		LeaseStatusEviction,
		LeaseStatusExpired,
	} {
		if ValidateTransition(ValidLeaseTransitions, string(st), string(LeaseStatusTerminated)) == nil {
			out = append(out, st)
		}
	}
	return out
}
