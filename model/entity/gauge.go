package entity

import (
	"fmt"
	"time"
)

// Gauge operational statuses. Written by the checkout/calibration
// subsystems; read here as guard conditions. The lifecycle engine only
// ever writes StatusRetired.
const (
	StatusAvailable          = "available"
	StatusCheckedOut         = "checked_out"
	StatusInCalibration      = "in_calibration"
	StatusCalibrationDue     = "calibration_due"
	StatusOutOfService       = "out_of_service"
	StatusPendingQC          = "pending_qc"
	StatusPendingCertificate = "pending_certificate"
	StatusPendingRelease     = "pending_release"
	StatusRetired            = "retired"
)

// Equipment classes. Thread-style classes are pairable (GO/NO-GO sets);
// the rest are single-gauge equipment.
const (
	ClassThreadPlug     = "thread_plug"
	ClassThreadRing     = "thread_ring"
	ClassHandTool       = "hand_tool"
	ClassLargeEquipment = "large_equipment"
	ClassStandard       = "standard"
)

// GO/NO-GO member suffixes.
const (
	SuffixGo   = "A"
	SuffixNoGo = "B"
)

// Ownership types.
const (
	OwnershipCompany  = "company"
	OwnershipCustomer = "customer"
)

type Gauge struct {
	GaugeID        uint       `gorm:"column:gauge_id;primaryKey;autoIncrement"`
	ExternalID     *string    `gorm:"column:external_id;type:varchar(16);uniqueIndex"`
	SerialNumber   *string    `gorm:"column:serial_number;type:varchar(64);uniqueIndex"`
	SetID          *string    `gorm:"column:set_id;type:varchar(16);index"`
	Suffix         *string    `gorm:"column:suffix;type:char(1)"`
	CompanionID    *uint      `gorm:"column:companion_id"`
	EquipmentClass string     `gorm:"column:equipment_class;type:varchar(32);not null"`
	CategoryID     uint       `gorm:"column:category_id;not null;index"`
	SpecSize       string     `gorm:"column:spec_size;type:varchar(32);not null;default:''"`
	SpecClass      string     `gorm:"column:spec_class;type:varchar(16);not null;default:''"`
	SpecForm       string     `gorm:"column:spec_form;type:varchar(16);not null;default:''"`
	SpecType       string     `gorm:"column:spec_type;type:varchar(16);not null;default:''"`
	Status         string     `gorm:"column:status;type:varchar(32);not null;default:'available'"`
	Sealed         bool       `gorm:"column:sealed;not null;default:0"`
	OwnershipType  string     `gorm:"column:ownership_type;type:varchar(16);not null;default:'company'"`
	OwnerRef       *string    `gorm:"column:owner_ref;type:varchar(64)"`
	IsSpare        bool       `gorm:"column:is_spare;not null;default:0"`
	LocationCode   *string    `gorm:"column:location_code;type:varchar(32)"`
	DeletedAt      *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Gauge) TableName() string {
	return "gauge"
}

// Pairable reports whether this gauge's equipment class forms GO/NO-GO sets.
func (g *Gauge) Pairable() bool {
	return g.EquipmentClass == ClassThreadPlug || g.EquipmentClass == ClassThreadRing
}

// SpecFingerprint returns the size/class/form/type tuple used for
// companion compatibility matching.
func (g *Gauge) SpecFingerprint() string {
	return fmt.Sprintf("%s/%s/%s/%s", g.SpecSize, g.SpecClass, g.SpecForm, g.SpecType)
}

// SameOwner reports whether two gauges share ownership type and, for
// customer-owned gauges, the same owner.
func (g *Gauge) SameOwner(other *Gauge) bool {
	if g.OwnershipType != other.OwnershipType {
		return false
	}
	if g.OwnershipType != OwnershipCustomer {
		return true
	}
	if g.OwnerRef == nil || other.OwnerRef == nil {
		return g.OwnerRef == other.OwnerRef
	}
	return *g.OwnerRef == *other.OwnerRef
}
