package lifecycle

import (
	"time"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

// Unpair dissolves a set; both members return to the spare pool. The
// set id itself stays burned in the ledger and can never be reassigned.
func (e *Engine) Unpair(setID, actor, reason string) error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
		members, err := e.lockCompleteSet(tx, setID)
		if err != nil {
			return err
		}
		memberIDs := make([]uint, 0, 2)
		for _, g := range members {
			if err := guardInService(g); err != nil {
				return err
			}
			memberIDs = append(memberIDs, g.GaugeID)
		}
		for _, g := range members {
			detachMember(g)
			if err := e.gauges.Save(tx, g); err != nil {
				return err
			}
		}
		return e.ledger.Append(tx, setID, entity.ActionUnpaired, actor, reason,
			entity.UnpairedMeta{MemberIDs: memberIDs})
	})
	return faults.Classify(err)
}

// Retire soft-deletes both members while leaving their set linkage in
// place. That retained linkage is what keeps the set's service history
// attributable after removal; it is the whole difference from Unpair.
// Reason is mandatory.
func (e *Engine) Retire(setID, actor, reason string) error {
	if reason == "" {
		return faults.Validation(faults.KindReasonRequired, "reason", "non-empty", "",
			"a reason is required when retiring a set")
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		members, err := e.lockCompleteSet(tx, setID)
		if err != nil {
			return err
		}
		memberIDs := make([]uint, 0, 2)
		for _, g := range members {
			if err := guardInService(g); err != nil {
				return err
			}
			memberIDs = append(memberIDs, g.GaugeID)
		}
		now := time.Now().UTC()
		for _, g := range members {
			deleted := now
			g.DeletedAt = &deleted
			g.Status = entity.StatusRetired
			g.IsSpare = false
			// set_id, external_id, suffix and companion_id stay put
			if err := e.gauges.Save(tx, g); err != nil {
				return err
			}
		}
		return e.ledger.Append(tx, setID, entity.ActionRetired, actor, reason,
			entity.RetiredMeta{MemberIDs: memberIDs})
	})
	return faults.Classify(err)
}

// lockCompleteSet locks the set's members and insists on exactly two
// live rows. One live row means the set is incomplete (lost member) and
// must be made whole via ReplaceMember before any set operation; zero
// means unknown.
func (e *Engine) lockCompleteSet(tx *gorm.DB, setID string) ([]*entity.Gauge, error) {
	members, err := e.gauges.LockSetMembers(tx, setID)
	if err != nil {
		return nil, err
	}
	switch len(members) {
	case 2:
		return members, nil
	case 0:
		return nil, faults.Validation(faults.KindNotFound, "setId", "", setID,
			"set %s does not exist or is fully retired", setID)
	default:
		return nil, faults.Validation(faults.KindIncompleteSet, "setId", "2 members", "",
			"set %s is incomplete (%d live member); replace the missing member to restore it", setID, len(members))
	}
}
