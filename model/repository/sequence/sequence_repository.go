package sequence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// forUpdate adds an exclusive row lock on MySQL. SQLite (tests) has no
// FOR UPDATE syntax; its single-writer transaction lock serializes there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// LockRow loads and exclusively locks the sequence row for
// (categoryID, subType) inside the caller's transaction. The lock is
// held until the transaction commits or rolls back.
func (r *SequenceRepository) LockRow(tx *gorm.DB, categoryID uint, subType string) (*entity.IdentifierSequence, error) {
	var seq entity.IdentifierSequence
	err := forUpdate(tx).
		Where("category_id = ? AND sub_type = ?", categoryID, subType).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &faults.ConfigurationError{
			Message: fmt.Sprintf("no identifier sequence configured for category %d sub-type %q", categoryID, subType),
		}
	}
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// Allocate issues the next identifier for (categoryID, subType) and
// advances the counter. Must run inside a transaction; never call it on
// a bare DB handle. Values past 9999 format wider, the counter never
// wraps or resets.
func (r *SequenceRepository) Allocate(tx *gorm.DB, categoryID uint, subType string) (string, error) {
	seq, err := r.LockRow(tx, categoryID, subType)
	if err != nil {
		return "", err
	}
	identifier := FormatIdentifier(seq.Prefix, seq.NextValue)
	err = tx.Model(&entity.IdentifierSequence{}).
		Where("sequence_id = ?", seq.SequenceID).
		UpdateColumn("next_value", seq.NextValue+1).Error
	if err != nil {
		return "", err
	}
	return identifier, nil
}

// FormatIdentifier renders prefix + zero-padded counter (SP, 17 -> SP0017).
func FormatIdentifier(prefix string, value uint64) string {
	return fmt.Sprintf("%s%04d", prefix, value)
}

// Seed inserts sequence rows that do not exist yet. Existing rows are
// left untouched (counters are never reset).
func (r *SequenceRepository) Seed(rows []entity.IdentifierSequence) (int, error) {
	created := 0
	for i := range rows {
		res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows[i])
		if res.Error != nil {
			return created, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
