package entity

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/datatypes"
)

// Lifecycle actions recorded in the ledger. Closed set — DecodeMetadata
// switches exhaustively over these.
const (
	ActionCreated          = "created"
	ActionPairedFromSpares = "paired_from_spares"
	ActionReplaced         = "replaced"
	ActionUnpaired         = "unpaired"
	ActionRetired          = "retired"
	ActionCascadedStatus   = "cascaded_status"
)

// HistoryEntry is append-only. Rows are never updated or deleted; the
// ledger is the sole authority for identifier reuse checks.
type HistoryEntry struct {
	HistoryID  uint           `gorm:"column:history_id;primaryKey;autoIncrement"`
	Identifier string         `gorm:"column:identifier;type:varchar(16);not null;index"`
	Action     string         `gorm:"column:action;type:varchar(32);not null"`
	ActorRef   string         `gorm:"column:actor_ref;type:varchar(64);not null"`
	Reason     string         `gorm:"column:reason;type:varchar(255);not null;default:''"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index"`
	Metadata   datatypes.JSON `gorm:"column:metadata"`
}

func (HistoryEntry) TableName() string {
	return "gauge_history"
}

// --- Typed metadata payloads, one per action ---

type CreatedMeta struct {
	GaugeID uint `json:"gauge_id" mapstructure:"gauge_id"`
}

type PairedMeta struct {
	GoGaugeID   uint `json:"go_gauge_id" mapstructure:"go_gauge_id"`
	NoGoGaugeID uint `json:"no_go_gauge_id" mapstructure:"no_go_gauge_id"`
}

type ReplacedMeta struct {
	SetID       string `json:"set_id" mapstructure:"set_id"`
	OldMemberID uint   `json:"old_member_id" mapstructure:"old_member_id"`
	NewMemberID uint   `json:"new_member_id" mapstructure:"new_member_id"`
}

type UnpairedMeta struct {
	MemberIDs []uint `json:"member_ids" mapstructure:"member_ids"`
}

type RetiredMeta struct {
	MemberIDs []uint `json:"member_ids" mapstructure:"member_ids"`
}

type CascadedStatusMeta struct {
	GaugeID   uint   `json:"gauge_id" mapstructure:"gauge_id"`
	OldStatus string `json:"old_status" mapstructure:"old_status"`
	NewStatus string `json:"new_status" mapstructure:"new_status"`
}

// DecodeMetadata decodes a raw metadata map into the typed payload for
// the entry's action.
func DecodeMetadata(action string, raw map[string]interface{}) (interface{}, error) {
	var out interface{}
	switch action {
	case ActionCreated:
		out = &CreatedMeta{}
	case ActionPairedFromSpares:
		out = &PairedMeta{}
	case ActionReplaced:
		out = &ReplacedMeta{}
	case ActionUnpaired:
		out = &UnpairedMeta{}
	case ActionRetired:
		out = &RetiredMeta{}
	case ActionCascadedStatus:
		out = &CascadedStatusMeta{}
	default:
		return nil, fmt.Errorf("unknown history action %q", action)
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", action, err)
	}
	return out, nil
}
