package lifecycle

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

// pairedSet pairs two fresh spares and returns (goMember, noGoMember, setID).
func pairedSet(t *testing.T, db *gorm.DB, engine *Engine, snA, snB string) (*entity.Gauge, *entity.Gauge, string) {
	t.Helper()
	a := newSpare(t, db, snA)
	b := newSpare(t, db, snB)
	setID, err := engine.PairFromSpares(PairRequest{GoGaugeID: a.GaugeID, NoGoGaugeID: b.GaugeID, Actor: "inspector1"})
	if err != nil {
		t.Fatalf("PairFromSpares: %v", err)
	}
	return reload(t, db, a.GaugeID), reload(t, db, b.GaugeID), setID
}

func TestReplaceMember_SwapsAndRelinks(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	repl := newSpare(t, db, "SN-3")

	if err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "GO member dropped"); err != nil {
		t.Fatalf("ReplaceMember: %v", err)
	}

	old := reload(t, db, goG.GaugeID)
	if old.SetID != nil || old.ExternalID != nil || old.CompanionID != nil {
		t.Error("old member still carries set linkage")
	}
	if !old.IsSpare {
		t.Error("old member not returned to spare pool")
	}

	incoming := reload(t, db, repl.GaugeID)
	if incoming.ExternalID == nil || *incoming.ExternalID != setID+entity.SuffixGo {
		t.Errorf("replacement external id = %v, want %sA (inherits the old suffix)", incoming.ExternalID, setID)
	}
	if incoming.CompanionID == nil || *incoming.CompanionID != noGo.GaugeID {
		t.Error("replacement companion not pointing at surviving member")
	}

	survivor := reload(t, db, noGo.GaugeID)
	if survivor.CompanionID == nil || *survivor.CompanionID != repl.GaugeID {
		t.Error("surviving member companion not repointed at replacement")
	}

	entries := ledgerFor(t, db, setID)
	last := entries[len(entries)-1]
	if last.Action != entity.ActionReplaced {
		t.Fatalf("last action = %q, want replaced", last.Action)
	}
	if last.Reason != "GO member dropped" {
		t.Errorf("Reason = %q, want the supplied reason", last.Reason)
	}
}

func TestReplaceMember_ReasonRequired(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, _, _ := pairedSet(t, db, engine, "SN-1", "SN-2")
	repl := newSpare(t, db, "SN-3")

	err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "")
	wantKind(t, err, faults.KindReasonRequired)
}

func TestReplaceMember_ExistingNotPaired(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	lone := newSpare(t, db, "SN-1")
	repl := newSpare(t, db, "SN-2")

	err := engine.ReplaceMember(lone.GaugeID, repl.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindNotPaired)
}

func TestReplaceMember_SpecMismatchLeavesSetUntouched(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	repl := newSpare(t, db, "SN-3", func(g *entity.Gauge) { g.SpecSize = "3/8-16" })

	err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindSpecMismatch)

	// Atomicity: nothing moved.
	after := reload(t, db, goG.GaugeID)
	if after.SetID == nil || *after.SetID != setID {
		t.Error("existing member lost its set after failed replace")
	}
	if after.IsSpare {
		t.Error("existing member returned to spares after failed replace")
	}
	untouched := reload(t, db, repl.GaugeID)
	if untouched.SetID != nil || !untouched.IsSpare {
		t.Error("rejected replacement gained set membership")
	}
	survivor := reload(t, db, noGo.GaugeID)
	if survivor.CompanionID == nil || *survivor.CompanionID != goG.GaugeID {
		t.Error("companion repointed despite failed replace")
	}
	entries := ledgerFor(t, db, setID)
	if len(entries) != 1 {
		t.Errorf("ledger grew to %d entries on failed replace", len(entries))
	}
}

func TestReplaceMember_PendingQCReplacementRejected(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, _, _ := pairedSet(t, db, engine, "SN-1", "SN-2")
	repl := newSpare(t, db, "SN-3", func(g *entity.Gauge) { g.Status = entity.StatusPendingQC })

	err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindPendingQC)
}

func TestReplaceMember_CheckedOutMemberRejected(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, _ := pairedSet(t, db, engine, "SN-1", "SN-2")
	noGo.Status = entity.StatusCheckedOut
	if err := db.Save(noGo).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	repl := newSpare(t, db, "SN-3")

	err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindCheckedOut)
}

func TestReplaceMember_RestoresIncompleteSet(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, setID := pairedSet(t, db, engine, "SN-1", "SN-2")
	now := time.Now().UTC()
	goG.DeletedAt = &now
	if err := db.Save(goG).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	repl := newSpare(t, db, "SN-3")

	if err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "member lost"); err != nil {
		t.Fatalf("ReplaceMember: %v", err)
	}

	lost := reload(t, db, goG.GaugeID)
	if lost.SetID != nil || lost.ExternalID != nil {
		t.Error("lost member still carries set linkage")
	}
	if lost.IsSpare {
		t.Error("lost member flagged as spare despite being deleted")
	}
	incoming := reload(t, db, repl.GaugeID)
	if incoming.ExternalID == nil || *incoming.ExternalID != setID+entity.SuffixGo {
		t.Errorf("replacement external id = %v, want %sA", incoming.ExternalID, setID)
	}
	survivor := reload(t, db, noGo.GaugeID)
	if survivor.CompanionID == nil || *survivor.CompanionID != repl.GaugeID {
		t.Error("survivor companion not repointed at replacement")
	}

	// The set is whole again and lifecycle operations work.
	if err := engine.Unpair(setID, "inspector1", "rework"); err != nil {
		t.Fatalf("Unpair after restore: %v", err)
	}
}

func TestReplaceMember_SurvivorNamedForLostMember(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, noGo, _ := pairedSet(t, db, engine, "SN-1", "SN-2")
	now := time.Now().UTC()
	noGo.DeletedAt = &now
	if err := db.Save(noGo).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	repl := newSpare(t, db, "SN-3")

	// Naming the surviving member swaps out the wrong gauge; the error
	// points at the lost member instead.
	err := engine.ReplaceMember(goG.GaugeID, repl.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindIncompleteSet)
}

func TestReplaceMember_ReplacementAlreadyPaired(t *testing.T) {
	db := testDB(t)
	engine := NewEngine(db, nil)
	goG, _, _ := pairedSet(t, db, engine, "SN-1", "SN-2")
	otherGo, _, _ := pairedSet(t, db, engine, "SN-3", "SN-4")

	err := engine.ReplaceMember(goG.GaugeID, otherGo.GaugeID, "inspector1", "swap")
	wantKind(t, err, faults.KindAlreadyPaired)
}
