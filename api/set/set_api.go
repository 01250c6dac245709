package set

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gaugetrack.GO/api"
	"gaugetrack.GO/config"
	"gaugetrack.GO/core/auth"
	"gaugetrack.GO/core/cache"
	entity "gaugetrack.GO/model/entity"
	gaugeRepo "gaugetrack.GO/model/repository/gauge"
	"gaugetrack.GO/service/inventory"
	"gaugetrack.GO/service/lifecycle"
)

func init() {
	api.RegisterModule(RegisterSetRoutes)
}

// SetDetail is the derived read payload for one set. Composite status
// and seal are recomputed per read, never persisted.
type SetDetail struct {
	SetID        string              `json:"set_id"`
	Members      []*entity.Gauge     `json:"members"`
	Status       lifecycle.SetStatus `json:"status"`
	Seal         string              `json:"seal"`
	Incomplete   bool                `json:"incomplete"`
	Retired      bool                `json:"retired"`
	HistoryCount int64               `json:"history_count"`
}

func RegisterSetRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/sets")
	repo := gaugeRepo.GetGaugeRepository(db)
	engine := lifecycle.NewEngine(db, inventory.NewMovementService(db))

	g.GET("/:setId", func(c echo.Context) error {
		setID := c.Param("setId")
		if detail, ok := cachedDetail(setID); ok {
			return c.JSON(http.StatusOK, detail)
		}

		var members []*entity.Gauge
		var historyCount int64
		var eg errgroup.Group
		eg.Go(func() error {
			var err error
			members, err = repo.AllSetMembers(setID)
			return err
		})
		eg.Go(func() error {
			return db.Model(&entity.HistoryEntry{}).Where("identifier = ?", setID).Count(&historyCount).Error
		})
		if err := eg.Wait(); err != nil {
			return api.WriteError(c, err)
		}
		if len(members) == 0 {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "set not found"})
		}

		detail := buildDetail(setID, members, historyCount)
		storeDetail(setID, detail)
		return c.JSON(http.StatusOK, detail)
	})

	// POST /api/sets/pair
	g.POST("/pair", func(c echo.Context) error {
		var body struct {
			GoGaugeID   uint   `json:"go_gauge_id"`
			NoGoGaugeID uint   `json:"no_go_gauge_id"`
			SetID       string `json:"set_id"`
			Location    string `json:"location"`
			Reason      string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.GoGaugeID == 0 || body.NoGoGaugeID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "go_gauge_id and no_go_gauge_id are required"})
		}
		setID, err := engine.PairFromSpares(lifecycle.PairRequest{
			GoGaugeID:    body.GoGaugeID,
			NoGoGaugeID:  body.NoGoGaugeID,
			CustomSetID:  body.SetID,
			LocationCode: body.Location,
			Reason:       body.Reason,
			Actor:        auth.Actor(c),
		})
		if err != nil {
			return api.WriteError(c, err)
		}
		invalidate(setID)
		return c.JSON(http.StatusCreated, echo.Map{"set_id": setID})
	})

	// POST /api/sets/:setId/replace
	g.POST("/:setId/replace", func(c echo.Context) error {
		var body struct {
			ExistingGaugeID    uint   `json:"existing_gauge_id"`
			ReplacementGaugeID uint   `json:"replacement_gauge_id"`
			Reason             string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		err := engine.ReplaceMember(body.ExistingGaugeID, body.ReplacementGaugeID, auth.Actor(c), body.Reason)
		if err != nil {
			return api.WriteError(c, err)
		}
		invalidate(c.Param("setId"))
		return c.JSON(http.StatusOK, echo.Map{"replaced": true})
	})

	// POST /api/sets/:setId/unpair
	g.POST("/:setId/unpair", func(c echo.Context) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		setID := c.Param("setId")
		if err := engine.Unpair(setID, auth.Actor(c), body.Reason); err != nil {
			return api.WriteError(c, err)
		}
		invalidate(setID)
		return c.JSON(http.StatusOK, echo.Map{"unpaired": true})
	})

	// POST /api/sets/:setId/retire
	g.POST("/:setId/retire", func(c echo.Context) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		setID := c.Param("setId")
		if err := engine.Retire(setID, auth.Actor(c), body.Reason); err != nil {
			return api.WriteError(c, err)
		}
		invalidate(setID)
		return c.JSON(http.StatusOK, echo.Map{"retired": true})
	})
}

func buildDetail(setID string, members []*entity.Gauge, historyCount int64) *SetDetail {
	detail := &SetDetail{
		SetID:        setID,
		Members:      members,
		HistoryCount: historyCount,
	}
	live := make([]*entity.Gauge, 0, len(members))
	for _, m := range members {
		if m.DeletedAt == nil {
			live = append(live, m)
		}
	}
	switch {
	case len(live) == 2:
		detail.Status = lifecycle.CompositeStatus(live[0], live[1])
		detail.Seal = lifecycle.CompositeSeal(live[0], live[1])
	case len(live) == 1:
		detail.Incomplete = true
		detail.Status = lifecycle.CompositeStatus(live[0], live[0])
		detail.Seal = lifecycle.CompositeSeal(live[0], live[0])
		reason := "set is incomplete; replace the lost member or retire"
		detail.Status.CanCheckout = false
		detail.Status.Reason = &reason
	default:
		detail.Retired = true
		a, b := members[0], members[len(members)-1]
		detail.Status = lifecycle.CompositeStatus(a, b)
		detail.Seal = lifecycle.CompositeSeal(a, b)
	}
	return detail
}

// cachedDetail checks the in-process cache first, then Redis when
// configured (shared across instances).
func cachedDetail(setID string) (*SetDetail, bool) {
	if v, ok := cache.GetInstance().Get("set:" + setID); ok {
		if d, ok := v.(*SetDetail); ok {
			return d, true
		}
	}
	if config.RedisClient != nil {
		raw, err := config.RedisClient.Get(config.RedisCtx(), "set:"+setID).Bytes()
		if err == nil {
			var d SetDetail
			if json.Unmarshal(raw, &d) == nil {
				return &d, true
			}
		}
	}
	return nil, false
}

func storeDetail(setID string, d *SetDetail) {
	cache.GetInstance().Set("set:"+setID, d, 30, []string{"set:" + setID})
	if config.RedisClient != nil {
		if raw, err := json.Marshal(d); err == nil {
			config.RedisClient.Set(config.RedisCtx(), "set:"+setID, raw, 30*time.Second)
		}
	}
}

func invalidate(setID string) {
	cache.GetInstance().InvalidateTag("set:" + setID)
	if config.RedisClient != nil {
		config.RedisClient.Del(config.RedisCtx(), "set:"+setID)
	}
}
