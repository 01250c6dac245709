package entity

import "time"

type Location struct {
	LocationID uint      `gorm:"column:location_id;primaryKey;autoIncrement"`
	Code       string    `gorm:"column:code;type:varchar(32);not null;uniqueIndex"`
	Name       string    `gorm:"column:name;type:varchar(128);not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Location) TableName() string {
	return "location"
}

// Movement records one physical relocation. Best-effort bookkeeping;
// lifecycle correctness never depends on these rows.
type Movement struct {
	MovementID   uint      `gorm:"column:movement_id;primaryKey;autoIncrement"`
	GaugeID      uint      `gorm:"column:gauge_id;not null;index"`
	LocationCode string    `gorm:"column:location_code;type:varchar(32);not null"`
	ActorRef     string    `gorm:"column:actor_ref;type:varchar(64);not null"`
	Note         string    `gorm:"column:note;type:varchar(255);not null;default:''"`
	MovedAt      time.Time `gorm:"column:moved_at;autoCreateTime"`
}

func (Movement) TableName() string {
	return "gauge_movement"
}
