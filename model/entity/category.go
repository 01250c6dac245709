package entity

import "time"

type Category struct {
	CategoryID     uint      `gorm:"column:category_id;primaryKey;autoIncrement"`
	Code           string    `gorm:"column:code;type:varchar(32);not null;uniqueIndex"`
	Name           string    `gorm:"column:name;type:varchar(128);not null"`
	EquipmentClass string    `gorm:"column:equipment_class;type:varchar(32);not null"`
	// NPT-style single-gauge categories set this; pairing is rejected
	// for them regardless of specs.
	NonPairable bool      `gorm:"column:non_pairable;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "gauge_category"
}
