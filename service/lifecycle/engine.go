package lifecycle

import (
	"log"

	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
	categoryRepo "gaugetrack.GO/model/repository/category"
	gaugeRepo "gaugetrack.GO/model/repository/gauge"
	historyRepo "gaugetrack.GO/model/repository/history"
	sequenceRepo "gaugetrack.GO/model/repository/sequence"
)

// Relocator is the inventory/location collaborator. Relocation is
// best-effort: failures are logged and swallowed, never fatal to the
// lifecycle transaction.
type Relocator interface {
	Relocate(tx *gorm.DB, gaugeID uint, locationCode, actor, note string) error
}

// Engine orchestrates pairing, replacement, unpairing and retirement of
// GO/NO-GO gauge sets. Every public operation is one all-or-nothing
// transaction: validate under row locks, mutate, append exactly one
// ledger entry, commit.
type Engine struct {
	db        *gorm.DB
	gauges    *gaugeRepo.GaugeRepository
	sequences *sequenceRepo.SequenceRepository
	ledger    *historyRepo.HistoryRepository
	cats      *categoryRepo.CategoryRepository
	relocator Relocator
}

func NewEngine(db *gorm.DB, relocator Relocator) *Engine {
	return &Engine{
		db:        db,
		gauges:    gaugeRepo.GetGaugeRepository(db),
		sequences: sequenceRepo.NewSequenceRepository(db),
		ledger:    historyRepo.NewHistoryRepository(db),
		cats:      categoryRepo.NewCategoryRepository(db),
		relocator: relocator,
	}
}

// Ledger exposes the history repository for read paths (audit API).
func (e *Engine) Ledger() *historyRepo.HistoryRepository {
	return e.ledger
}

// Gauges exposes the gauge repository for read paths.
func (e *Engine) Gauges() *gaugeRepo.GaugeRepository {
	return e.gauges
}

// guardInService rejects members that are checked out or mid-calibration.
// Shared precondition of replace, unpair and retire.
func guardInService(g *entity.Gauge) error {
	label := memberLabel(g)
	switch g.Status {
	case entity.StatusCheckedOut:
		return faults.Validation(faults.KindCheckedOut, "status", "", g.Status,
			"gauge %s is checked out and cannot be modified", label)
	case entity.StatusInCalibration:
		return faults.Validation(faults.KindInCalibration, "status", "", g.Status,
			"gauge %s is in calibration and cannot be modified", label)
	}
	return nil
}

func memberLabel(g *entity.Gauge) string {
	if g.ExternalID != nil {
		return *g.ExternalID
	}
	if g.SerialNumber != nil {
		return *g.SerialNumber
	}
	return "unknown"
}

// relocate moves a gauge via the collaborator and records the new
// location on the row. Failures are logged, not escalated.
func (e *Engine) relocate(tx *gorm.DB, g *entity.Gauge, locationCode, actor, note string) {
	if e.relocator == nil || locationCode == "" {
		return
	}
	if err := e.relocator.Relocate(tx, g.GaugeID, locationCode, actor, note); err != nil {
		log.Printf("lifecycle: relocate gauge %d to %s failed (ignored): %v", g.GaugeID, locationCode, err)
		return
	}
	code := locationCode
	g.LocationCode = &code
}

// CreateSpareRequest describes a new unpaired gauge entering the pool.
type CreateSpareRequest struct {
	SerialNumber   string
	EquipmentClass string
	CategoryID     uint
	SpecSize       string
	SpecClass      string
	SpecForm       string
	SpecType       string
	OwnershipType  string
	OwnerRef       string
	Sealed         bool
	LocationCode   string
	Actor          string
}

// CreateSpare registers a new gauge as a spare (no set membership) and
// writes its `created` ledger entry, keyed by serial number.
func (e *Engine) CreateSpare(req CreateSpareRequest) (*entity.Gauge, error) {
	g := &entity.Gauge{
		EquipmentClass: req.EquipmentClass,
		CategoryID:     req.CategoryID,
		SpecSize:       req.SpecSize,
		SpecClass:      req.SpecClass,
		SpecForm:       req.SpecForm,
		SpecType:       req.SpecType,
		Status:         entity.StatusAvailable,
		Sealed:         req.Sealed,
		OwnershipType:  req.OwnershipType,
	}
	if g.OwnershipType == "" {
		g.OwnershipType = entity.OwnershipCompany
	}
	if req.OwnerRef != "" {
		ref := req.OwnerRef
		g.OwnerRef = &ref
	}
	if req.SerialNumber != "" {
		sn := req.SerialNumber
		g.SerialNumber = &sn
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if g.Pairable() {
			g.IsSpare = true
			if g.SerialNumber == nil {
				return faults.Validation(faults.KindNotFound, "serialNumber", "non-empty", "",
					"serial number is required for %s equipment", g.EquipmentClass)
			}
			taken, err := e.gauges.SerialExists(tx, *g.SerialNumber)
			if err != nil {
				return err
			}
			if taken {
				return faults.Validation(faults.KindIdentifierReused, "serialNumber", "", *g.SerialNumber,
					"serial number %q is already registered", *g.SerialNumber)
			}
		}
		if err := e.gauges.Create(tx, g); err != nil {
			// The serial_number unique index backstops a race the
			// in-transaction check cannot see on read-committed stores.
			if isDuplicateKey(err) && g.SerialNumber != nil {
				return faults.Validation(faults.KindIdentifierReused, "serialNumber", "", *g.SerialNumber,
					"serial number %q is already registered", *g.SerialNumber)
			}
			return err
		}
		e.relocate(tx, g, req.LocationCode, req.Actor, "registered")
		if g.LocationCode != nil {
			if err := e.gauges.Save(tx, g); err != nil {
				return err
			}
		}
		return e.ledger.Append(tx, memberLabel(g), entity.ActionCreated, req.Actor, "",
			entity.CreatedMeta{GaugeID: g.GaugeID})
	})
	if err != nil {
		return nil, faults.Classify(err)
	}
	return g, nil
}
