package models

// --- Gauge ---

type Gauge struct {
	GaugeID        int32   `json:"gauge_id"`
	ExternalID     *string `json:"external_id,omitempty"`
	SerialNumber   *string `json:"serial_number,omitempty"`
	SetID          *string `json:"set_id,omitempty"`
	Suffix         *string `json:"suffix,omitempty"`
	CompanionID    *int32  `json:"companion_id,omitempty"`
	EquipmentClass string  `json:"equipment_class"`
	CategoryID     int32   `json:"category_id"`
	Spec           string  `json:"spec"`
	Status         string  `json:"status"`
	Sealed         bool    `json:"sealed"`
	OwnershipType  string  `json:"ownership_type"`
	OwnerRef       *string `json:"owner_ref,omitempty"`
	IsSpare        bool    `json:"is_spare"`
	Location       *string `json:"location,omitempty"`
	Retired        bool    `json:"retired"`
}

// --- Set ---

type SetDetail struct {
	SetID       string   `json:"set_id"`
	Status      string   `json:"status"`
	CanCheckout bool     `json:"can_checkout"`
	Reason      *string  `json:"reason,omitempty"`
	Seal        string   `json:"seal"`
	Incomplete  bool     `json:"incomplete"`
	Retired     bool     `json:"retired"`
	Members     []*Gauge `json:"members"`
}

// --- History ---

type HistoryEntry struct {
	HistoryID  int32   `json:"history_id"`
	Identifier string  `json:"identifier"`
	Action     string  `json:"action"`
	ActorRef   string  `json:"actor_ref"`
	Reason     string  `json:"reason"`
	OccurredAt string  `json:"occurred_at"`
	Metadata   *string `json:"metadata,omitempty"`
}

// --- Search ---

type GaugeSearchResult struct {
	Items       []*Gauge `json:"items"`
	TotalCount  int32    `json:"total_count"`
	PageSize    int32    `json:"page_size"`
	CurrentPage int32    `json:"current_page"`
}
