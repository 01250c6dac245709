package lifecycle

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

// PairRequest names the two spares to join into a GO/NO-GO set.
type PairRequest struct {
	GoGaugeID   uint
	NoGoGaugeID uint
	Actor       string
	// CustomSetID bypasses the allocator. It must never have appeared
	// in the ledger and must not be active anywhere.
	CustomSetID  string
	LocationCode string
	Reason       string
}

// PairFromSpares joins two compatible spares into a new set and returns
// the set identifier. Preconditions are checked under row locks in a
// fixed order; the first failure wins and rolls everything back.
func (e *Engine) PairFromSpares(req PairRequest) (string, error) {
	if req.GoGaugeID == req.NoGoGaugeID {
		return "", faults.Validation(faults.KindNotFound, "noGoGaugeId", "", "",
			"GO and NO-GO members must be two distinct gauges")
	}

	var setID string
	err := e.db.Transaction(func(tx *gorm.DB) error {
		rows, err := e.gauges.LockByIDs(tx, req.GoGaugeID, req.NoGoGaugeID)
		if err != nil {
			return err
		}
		goG, noGo := rows[req.GoGaugeID], rows[req.NoGoGaugeID]
		if goG == nil || goG.DeletedAt != nil {
			return faults.Validation(faults.KindNotFound, "goGaugeId", "", "",
				"gauge %d does not exist or has been retired", req.GoGaugeID)
		}
		if noGo == nil || noGo.DeletedAt != nil {
			return faults.Validation(faults.KindNotFound, "noGoGaugeId", "", "",
				"gauge %d does not exist or has been retired", req.NoGoGaugeID)
		}
		for _, g := range []*entity.Gauge{goG, noGo} {
			if g.SetID != nil {
				return faults.Validation(faults.KindAlreadyPaired, "setId", "", *g.SetID,
					"gauge %s is already a member of set %s", memberLabel(g), *g.SetID)
			}
			if !g.Pairable() {
				return faults.Validation(faults.KindNonPairableCategory, "equipmentClass", "", g.EquipmentClass,
					"%s equipment cannot be paired into sets", g.EquipmentClass)
			}
		}
		if goG.CategoryID != noGo.CategoryID || goG.EquipmentClass != noGo.EquipmentClass {
			return faults.Validation(faults.KindSpecMismatch, "categoryId", "", "",
				"both members must share one category and equipment class")
		}
		cat, err := e.cats.ByID(tx, goG.CategoryID)
		if err != nil {
			return err
		}
		if cat.NonPairable {
			return faults.Validation(faults.KindNonPairableCategory, "categoryId", "", cat.Code,
				"category %s holds single gauges and cannot form sets", cat.Code)
		}
		if goG.SpecFingerprint() != noGo.SpecFingerprint() {
			return faults.Validation(faults.KindSpecMismatch, "spec", goG.SpecFingerprint(), noGo.SpecFingerprint(),
				"specifications do not match: GO is %s, NO-GO is %s", goG.SpecFingerprint(), noGo.SpecFingerprint())
		}
		if !goG.SameOwner(noGo) {
			return faults.Validation(faults.KindOwnershipMismatch, "ownership", goG.OwnershipType, noGo.OwnershipType,
				"members must share ownership; customer-owned pairs must belong to the same customer")
		}

		// The sequence row lock also serializes custom-id acceptance:
		// two callers racing on the same custom id queue here.
		if req.CustomSetID != "" {
			if _, err := e.sequences.LockRow(tx, goG.CategoryID, goG.EquipmentClass); err != nil {
				return err
			}
			active, err := e.gauges.IdentifierActive(tx, req.CustomSetID)
			if err != nil {
				return err
			}
			if active {
				return faults.Validation(faults.KindIdentifierReused, "setId", "", req.CustomSetID,
					"Set ID %q is already in use", req.CustomSetID)
			}
			used, err := e.ledger.HasEverBeenUsed(tx, req.CustomSetID)
			if err != nil {
				return err
			}
			if used {
				return faults.Validation(faults.KindIdentifierReused, "setId", "", req.CustomSetID,
					"Set ID %q was previously used and cannot be reused", req.CustomSetID)
			}
			setID = req.CustomSetID
		} else {
			// A custom id may have landed inside this sequence's future
			// namespace. Skip past any value the ledger or a live row
			// already holds; skipped values stay burned.
			for {
				setID, err = e.sequences.Allocate(tx, goG.CategoryID, goG.EquipmentClass)
				if err != nil {
					return err
				}
				burned, berr := e.identifierBurned(tx, setID)
				if berr != nil {
					return berr
				}
				if !burned {
					break
				}
			}
		}

		attachMember(goG, setID, entity.SuffixGo, noGo.GaugeID)
		attachMember(noGo, setID, entity.SuffixNoGo, goG.GaugeID)
		e.relocate(tx, goG, req.LocationCode, req.Actor, "paired into "+setID)
		e.relocate(tx, noGo, req.LocationCode, req.Actor, "paired into "+setID)
		if err := e.saveMember(tx, goG, setID); err != nil {
			return err
		}
		if err := e.saveMember(tx, noGo, setID); err != nil {
			return err
		}

		return e.ledger.Append(tx, setID, entity.ActionPairedFromSpares, req.Actor, req.Reason,
			entity.PairedMeta{GoGaugeID: goG.GaugeID, NoGoGaugeID: noGo.GaugeID})
	})
	if err != nil {
		return "", faults.Classify(err)
	}
	return setID, nil
}

// identifierBurned reports whether id is carried by any live gauge or
// has ever appeared in the ledger.
func (e *Engine) identifierBurned(tx *gorm.DB, id string) (bool, error) {
	active, err := e.gauges.IdentifierActive(tx, id)
	if err != nil || active {
		return active, err
	}
	return e.ledger.HasEverBeenUsed(tx, id)
}

// saveMember persists a member row, translating a unique-index hit on
// external_id into the reuse error. The sequence-row locks of different
// categories do not collide, so two transactions racing the same custom
// id across categories are arbitrated by the index alone.
func (e *Engine) saveMember(tx *gorm.DB, g *entity.Gauge, setID string) error {
	err := e.gauges.Save(tx, g)
	if isDuplicateKey(err) {
		return faults.Validation(faults.KindIdentifierReused, "setId", "", setID,
			"Set ID %q is already in use", setID)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func attachMember(g *entity.Gauge, setID, suffix string, companionID uint) {
	sid, sfx := setID, suffix
	ext := setID + suffix
	cid := companionID
	g.SetID = &sid
	g.Suffix = &sfx
	g.ExternalID = &ext
	g.CompanionID = &cid
	g.IsSpare = false
}

func detachMember(g *entity.Gauge) {
	g.SetID = nil
	g.Suffix = nil
	g.ExternalID = nil
	g.CompanionID = nil
	g.IsSpare = true
}
