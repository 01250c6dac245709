package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	entity "gaugetrack.GO/model/entity"
)

// MovementService records physical relocations. It satisfies the
// lifecycle engine's Relocator interface; the engine treats failures as
// best-effort (logged, never fatal).
type MovementService struct {
	db *gorm.DB
}

func NewMovementService(db *gorm.DB) *MovementService {
	return &MovementService{db: db}
}

// Relocate validates the target location and appends one movement row
// inside the caller's transaction when one is given.
func (s *MovementService) Relocate(tx *gorm.DB, gaugeID uint, locationCode, actor, note string) error {
	h := tx
	if h == nil {
		h = s.db
	}
	var loc entity.Location
	err := h.Where("code = ?", locationCode).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("unknown location %q", locationCode)
	}
	if err != nil {
		return err
	}
	return h.Create(&entity.Movement{
		GaugeID:      gaugeID,
		LocationCode: loc.Code,
		ActorRef:     actor,
		Note:         note,
	}).Error
}

// MovementsFor returns a gauge's relocation trail, oldest first.
func (s *MovementService) MovementsFor(gaugeID uint) ([]entity.Movement, error) {
	var rows []entity.Movement
	err := s.db.
		Where("gauge_id = ?", gaugeID).
		Order("moved_at ASC, movement_id ASC").
		Find(&rows).Error
	return rows, err
}
