package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

func TestUnpair_ReturnsMembersToSparePool(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")

	if err := engine.Unpair(setID, "inspector1", "rework"); err != nil {
		t.Fatalf("Unpair: %v", err)
	}

	for _, id := range []uint{goG.GaugeID, noGo.GaugeID} {
		g := reload(t, db, id)
		if g.SetID != nil || g.ExternalID != nil || g.Suffix != nil || g.CompanionID != nil {
			t.Errorf("gauge %d still carries set linkage after unpair", id)
		}
		if !g.IsSpare {
			t.Errorf("gauge %d not returned to spare pool", id)
		}
		if g.DeletedAt != nil {
			t.Errorf("gauge %d deleted by unpair", id)
		}
	}

	entries := ledgerFor(t, db, setID)
	last := entries[len(entries)-1]
	if last.Action != entity.ActionUnpaired {
		t.Fatalf("last action = %q, want unpaired", last.Action)
	}
}

func TestUnpair_UnknownSet(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)

	err := engine.Unpair("SP9999", "inspector1", "")
	wantKind(t, err, faults.KindNotFound)
}

func TestUnpair_CheckedOutMemberRejected(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, _, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	goG.Status = entity.StatusCheckedOut
	if err := db.Save(goG).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	err := engine.Unpair(setID, "inspector1", "")
	wantKind(t, err, faults.KindCheckedOut)
}

func TestUnpair_IncompleteSetRejected(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, _, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	now := time.Now().UTC()
	goG.DeletedAt = &now
	if err := db.Save(goG).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	err := engine.Unpair(setID, "inspector1", "")
	wantKind(t, err, faults.KindIncompleteSet)

	// Retire routes through the same completeness check, so the error
	// must point at replacement, the one operation that can proceed.
	var v *faults.ValidationError
	if errors.As(err, &v) && !strings.Contains(v.Message, "replace the missing member") {
		t.Errorf("message = %q, want replacement guidance", v.Message)
	}
	err = engine.Retire(setID, "inspector1", "worn")
	wantKind(t, err, faults.KindIncompleteSet)
}

func TestRetire_RequiresReason(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	_, _, setID := pairedSet(t, db, engine, "SN-1", "SN-2")

	err := engine.Retire(setID, "inspector1", "")
	wantKind(t, err, faults.KindReasonRequired)
}

func TestRetire_KeepsLinkageForAudit(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")

	if err := engine.Retire(setID, "inspector1", "worn past tolerance"); err != nil {
		t.Fatalf("Retire: %v", err)
	}

	for _, id := range []uint{goG.GaugeID, noGo.GaugeID} {
		g := reload(t, db, id)
		if g.DeletedAt == nil {
			t.Errorf("gauge %d not soft-deleted", id)
		}
		if g.Status != entity.StatusRetired {
			t.Errorf("gauge %d status = %q, want retired", id, g.Status)
		}
		// The difference from unpair: linkage survives retirement.
		if g.SetID == nil || *g.SetID != setID {
			t.Errorf("gauge %d lost set id on retirement", id)
		}
		if g.ExternalID == nil || g.Suffix == nil || g.CompanionID == nil {
			t.Errorf("gauge %d lost identity fields on retirement", id)
		}
		if g.IsSpare {
			t.Errorf("retired gauge %d flagged as spare", id)
		}
	}

	entries := ledgerFor(t, db, setID)
	last := entries[len(entries)-1]
	if last.Action != entity.ActionRetired || last.Reason != "worn past tolerance" {
		t.Fatalf("last entry = %s/%q, want retired with reason", last.Action, last.Reason)
	}
}

func TestRetire_InCalibrationMemberRejected(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	_, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	noGo.Status = entity.StatusInCalibration
	if err := db.Save(noGo).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	err := engine.Retire(setID, "inspector1", "obsolete spec")
	wantKind(t, err, faults.KindInCalibration)
}

func TestRetire_ThenOperationsOnSetFail(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	_, _, setID := pairedSet(t, db, engine, "SN-1", "SN-2")

	if err := engine.Retire(setID, "inspector1", "worn"); err != nil {
		t.Fatalf("Retire: %v", err)
	}
	err := engine.Unpair(setID, "inspector1", "")
	wantKind(t, err, faults.KindNotFound)
}
