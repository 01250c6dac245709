package lifecycle

import (
	"errors"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

// ReplaceMember swaps one set member for a compatible spare. The old
// member returns to the spare pool; the replacement inherits the set
// id and suffix. Reason is mandatory. Naming a soft-deleted member
// restores an incomplete set: the replacement takes the lost member's
// place and the set becomes operable again.
func (e *Engine) ReplaceMember(existingID, replacementID uint, actor, reason string) error {
	if reason == "" {
		return faults.Validation(faults.KindReasonRequired, "reason", "non-empty", "",
			"a reason is required when replacing a set member")
	}
	if existingID == replacementID {
		return faults.Validation(faults.KindNotFound, "replacementGaugeId", "", "",
			"replacement must be a different gauge")
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		// Peek at the existing row to learn its companion, then take all
		// three locks in ascending id order. Membership is re-validated
		// from the locked rows.
		peek, err := e.gauges.ByID(tx, existingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.Validation(faults.KindNotFound, "existingGaugeId", "", "",
				"gauge %d does not exist", existingID)
		}
		if err != nil {
			return err
		}
		if peek.SetID == nil || peek.CompanionID == nil {
			return faults.Validation(faults.KindNotPaired, "setId", "non-null", "",
				"gauge %s is not a set member", memberLabel(peek))
		}

		rows, err := e.gauges.LockByIDs(tx, existingID, *peek.CompanionID, replacementID)
		if err != nil {
			return err
		}
		existing, companion, repl := rows[existingID], rows[*peek.CompanionID], rows[replacementID]
		if existing == nil || existing.SetID == nil {
			return faults.Validation(faults.KindNotPaired, "setId", "non-null", "",
				"gauge %d is no longer a set member", existingID)
		}
		setID := *existing.SetID
		if companion == nil || companion.SetID == nil || *companion.SetID != setID {
			return faults.Validation(faults.KindIncompleteSet, "companionId", "", "",
				"set %s has no intact companion record; contact QC", setID)
		}
		if companion.DeletedAt != nil {
			if existing.DeletedAt != nil {
				return faults.Validation(faults.KindNotFound, "setId", "", setID,
					"set %s does not exist or is fully retired", setID)
			}
			return faults.Validation(faults.KindIncompleteSet, "existingGaugeId", "", "",
				"gauge %d is the surviving member of %s; replace the lost member %d instead",
				existingID, setID, companion.GaugeID)
		}
		// A soft-deleted existing member is the restore path for an
		// incomplete set; its recorded status no longer guards anything.
		wasLost := existing.DeletedAt != nil
		if !wasLost {
			if err := guardInService(existing); err != nil {
				return err
			}
		}
		if err := guardInService(companion); err != nil {
			return err
		}
		if repl == nil || repl.DeletedAt != nil {
			return faults.Validation(faults.KindNotFound, "replacementGaugeId", "", "",
				"replacement gauge %d does not exist or has been retired", replacementID)
		}
		if repl.SetID != nil {
			return faults.Validation(faults.KindAlreadyPaired, "setId", "", *repl.SetID,
				"replacement gauge %s is already a member of set %s", memberLabel(repl), *repl.SetID)
		}
		if !repl.Pairable() {
			return faults.Validation(faults.KindNonPairableCategory, "equipmentClass", "", repl.EquipmentClass,
				"%s equipment cannot join a set", repl.EquipmentClass)
		}
		if repl.SpecFingerprint() != companion.SpecFingerprint() {
			return faults.Validation(faults.KindSpecMismatch, "spec", companion.SpecFingerprint(), repl.SpecFingerprint(),
				"replacement spec %s does not match companion spec %s", repl.SpecFingerprint(), companion.SpecFingerprint())
		}
		if repl.Status == entity.StatusPendingQC {
			return faults.Validation(faults.KindPendingQC, "status", "", repl.Status,
				"replacement gauge %s is awaiting QC acceptance", memberLabel(repl))
		}
		if !repl.SameOwner(companion) {
			return faults.Validation(faults.KindOwnershipMismatch, "ownership", companion.OwnershipType, repl.OwnershipType,
				"replacement ownership must match the set's ownership")
		}

		suffix := ""
		if existing.Suffix != nil {
			suffix = *existing.Suffix
		}
		detachMember(existing)
		if wasLost {
			existing.IsSpare = false
		}
		attachMember(repl, setID, suffix, companion.GaugeID)
		cid := repl.GaugeID
		companion.CompanionID = &cid
		e.relocate(tx, repl, companionLocation(companion), actor, "replacement into "+setID)

		for _, g := range []*entity.Gauge{existing, repl, companion} {
			if err := e.gauges.Save(tx, g); err != nil {
				return err
			}
		}

		return e.ledger.Append(tx, setID, entity.ActionReplaced, actor, reason, entity.ReplacedMeta{
			SetID:       setID,
			OldMemberID: existing.GaugeID,
			NewMemberID: repl.GaugeID,
		})
	})
	return faults.Classify(err)
}

func companionLocation(g *entity.Gauge) string {
	if g.LocationCode == nil {
		return ""
	}
	return *g.LocationCode
}
