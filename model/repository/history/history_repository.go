package history

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	entity "gaugetrack.GO/model/entity"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Append inserts one immutable ledger row inside the caller's
// transaction. meta is marshalled into the metadata JSON column.
func (r *HistoryRepository) Append(tx *gorm.DB, identifier, action, actor, reason string, meta interface{}) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal %s metadata: %w", action, err)
	}
	entry := entity.HistoryEntry{
		Identifier: identifier,
		Action:     action,
		ActorRef:   actor,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
		Metadata:   raw,
	}
	return r.handle(tx).Create(&entry).Error
}

// HasEverBeenUsed reports whether the identifier appears anywhere in
// the ledger. The ledger is append-only, so a true answer is permanent.
func (r *HistoryRepository) HasEverBeenUsed(tx *gorm.DB, identifier string) (bool, error) {
	var count int64
	err := r.handle(tx).Model(&entity.HistoryEntry{}).
		Where("identifier = ?", identifier).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ForSet returns the full ledger for a set, oldest first. history_id
// breaks occurred_at ties so replays are deterministic.
func (r *HistoryRepository) ForSet(setID string) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	err := r.db.
		Where("identifier = ?", setID).
		Order("occurred_at ASC, history_id ASC").
		Find(&entries).Error
	return entries, err
}

// DecodeEntry returns the typed metadata payload for a ledger row.
func DecodeEntry(e *entity.HistoryEntry) (interface{}, error) {
	if len(e.Metadata) == 0 {
		return nil, nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(e.Metadata, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for history %d: %w", e.HistoryID, err)
	}
	return entity.DecodeMetadata(e.Action, raw)
}
