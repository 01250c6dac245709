package lifecycle

import (
	entity "gaugetrack.GO/model/entity"
)

// Composite statuses that only exist at set level.
const (
	SetStatusPartiallyCheckedOut = "partially_checked_out"
)

// SetStatus is the derived state of a set, recomputed from its two
// member snapshots on every read. Never persisted — the member rows
// stay the single source of truth.
type SetStatus struct {
	Status      string  `json:"status"`
	CanCheckout bool    `json:"can_checkout"`
	Reason      *string `json:"reason"`
}

// Seal states.
const (
	SealSealed   = "sealed"
	SealUnsealed = "unsealed"
)

// statusPriority resolves a non-available composite status. First match
// across either member wins.
var statusPriority = []string{
	entity.StatusCheckedOut,
	entity.StatusOutOfService,
	entity.StatusCalibrationDue,
	entity.StatusInCalibration,
	entity.StatusPendingQC,
	entity.StatusPendingCertificate,
	entity.StatusPendingRelease,
}

var statusReasons = map[string]string{
	entity.StatusCheckedOut:          "a member is checked out",
	SetStatusPartiallyCheckedOut:     "one member is checked out",
	entity.StatusOutOfService:        "a member is out of service",
	entity.StatusCalibrationDue:      "calibration is due",
	entity.StatusInCalibration:       "a member is in calibration",
	entity.StatusPendingQC:           "awaiting QC acceptance",
	entity.StatusPendingCertificate:  "awaiting calibration certificate",
	entity.StatusPendingRelease:      "awaiting release",
	entity.StatusRetired:             "the set is retired",
}

// CompositeStatus derives the set status from both member snapshots.
// Available only when both members are available; a lone checked-out
// member yields partially_checked_out.
func CompositeStatus(a, b *entity.Gauge) SetStatus {
	if a.Status == entity.StatusAvailable && b.Status == entity.StatusAvailable {
		return SetStatus{Status: entity.StatusAvailable, CanCheckout: true}
	}

	for _, s := range statusPriority {
		aHit, bHit := a.Status == s, b.Status == s
		if !aHit && !bHit {
			continue
		}
		status := s
		if s == entity.StatusCheckedOut && aHit != bHit {
			other := b
			if bHit {
				other = a
			}
			if other.Status == entity.StatusAvailable {
				status = SetStatusPartiallyCheckedOut
			}
		}
		return blocked(status)
	}

	// Neither member matches the priority table: both share some other
	// non-available status (e.g. retired).
	return blocked(a.Status)
}

func blocked(status string) SetStatus {
	reason, ok := statusReasons[status]
	if !ok {
		reason = "the set is not available"
	}
	return SetStatus{Status: status, CanCheckout: false, Reason: &reason}
}

// CompositeSeal is a logical OR: the set counts as sealed until both
// members are unsealed.
func CompositeSeal(a, b *entity.Gauge) string {
	if a.Sealed || b.Sealed {
		return SealSealed
	}
	return SealUnsealed
}
