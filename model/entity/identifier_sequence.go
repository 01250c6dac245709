package entity

import "time"

// IdentifierSequence is a per (category, sub-type) monotonic counter row.
// next_value only ever moves forward; allocation locks the row for the
// duration of the caller's transaction.
type IdentifierSequence struct {
	SequenceID uint      `gorm:"column:sequence_id;primaryKey;autoIncrement"`
	CategoryID uint      `gorm:"column:category_id;not null;uniqueIndex:idx_sequence_category_subtype"`
	SubType    string    `gorm:"column:sub_type;type:varchar(16);not null;default:'';uniqueIndex:idx_sequence_category_subtype"`
	Prefix     string    `gorm:"column:prefix;type:varchar(4);not null"`
	NextValue  uint64    `gorm:"column:next_value;not null;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (IdentifierSequence) TableName() string {
	return "identifier_sequence"
}
