package history

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gaugetrack.GO/api"
	entity "gaugetrack.GO/model/entity"
	historyRepo "gaugetrack.GO/model/repository/history"
)

func init() {
	api.RegisterModule(RegisterHistoryRoutes)
}

// Entry is one ledger row with its metadata decoded into the typed
// payload for the action.
type Entry struct {
	HistoryID  uint        `json:"history_id"`
	Identifier string      `json:"identifier"`
	Action     string      `json:"action"`
	ActorRef   string      `json:"actor_ref"`
	Reason     string      `json:"reason"`
	OccurredAt string      `json:"occurred_at"`
	Metadata   interface{} `json:"metadata"`
}

func RegisterHistoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	ledger := historyRepo.NewHistoryRepository(db)

	// GET /api/sets/:setId/history — full ledger, oldest first
	apiGroup.GET("/sets/:setId/history", func(c echo.Context) error {
		setID := c.Param("setId")
		entries, err := ledger.ForSet(setID)
		if err != nil {
			return api.WriteError(c, err)
		}
		out := make([]Entry, 0, len(entries))
		for i := range entries {
			out = append(out, decodeEntry(&entries[i]))
		}
		return c.JSON(http.StatusOK, echo.Map{"set_id": setID, "entries": out})
	})
}

func decodeEntry(e *entity.HistoryEntry) Entry {
	meta, err := historyRepo.DecodeEntry(e)
	if err != nil {
		// Corrupt metadata is display-only damage; the row itself stays.
		log.Printf("history: decode entry %d: %v", e.HistoryID, err)
		meta = nil
	}
	return Entry{
		HistoryID:  e.HistoryID,
		Identifier: e.Identifier,
		Action:     e.Action,
		ActorRef:   e.ActorRef,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Metadata:   meta,
	}
}
