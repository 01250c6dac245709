package gauge

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gaugetrack.GO/api"
	"gaugetrack.GO/core/auth"
	gaugeRepo "gaugetrack.GO/model/repository/gauge"
	"gaugetrack.GO/service/lifecycle"
)

func init() {
	api.RegisterModule(RegisterGaugeRoutes)
}

func RegisterGaugeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/gauges")
	repo := gaugeRepo.GetGaugeRepository(db)
	engine := lifecycle.NewEngine(db, nil)

	// GET /api/gauges?category_id=&status=&spares=1&limit=&offset=
	g.GET("", func(c echo.Context) error {
		f := gaugeRepo.ListFilter{
			Status:     c.QueryParam("status"),
			SparesOnly: c.QueryParam("spares") == "1",
			SetID:      c.QueryParam("set_id"),
		}
		if v := c.QueryParam("category_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id must be numeric"})
			}
			f.CategoryID = uint(id)
		}
		f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
		f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
		if f.Limit <= 0 || f.Limit > 500 {
			f.Limit = 100
		}
		rows, err := repo.List(f)
		if err != nil {
			return api.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": rows, "count": len(rows)})
	})

	// GET /api/gauges/:id — numeric surrogate id or display identifier
	g.GET("/:id", func(c echo.Context) error {
		raw := c.Param("id")
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			row, err := repo.ByID(nil, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "gauge not found"})
			}
			if err != nil {
				return api.WriteError(c, err)
			}
			return c.JSON(http.StatusOK, row)
		}
		row, err := repo.ByExternalID(raw)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gauge not found"})
		}
		if err != nil {
			return api.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, row)
	})

	// PUT /api/gauges/:id — non-identity fields only. Identity
	// (serial, external id, set membership) moves exclusively through
	// the lifecycle engine.
	g.PUT("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be numeric"})
		}
		var body struct {
			Sealed    *bool   `json:"sealed"`
			OwnerRef  *string `json:"owner_ref"`
			SpecSize  *string `json:"spec_size"`
			SpecClass *string `json:"spec_class"`
			SpecForm  *string `json:"spec_form"`
			SpecType  *string `json:"spec_type"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		row, err := repo.ByID(nil, uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gauge not found"})
		}
		if err != nil {
			return api.WriteError(c, err)
		}
		if row.DeletedAt != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "gauge is retired and immutable"})
		}
		if body.Sealed != nil {
			row.Sealed = *body.Sealed
		}
		if body.OwnerRef != nil {
			row.OwnerRef = body.OwnerRef
		}
		// Spec fields stay editable only while the gauge is unpaired;
		// a set member's spec is frozen by the pairing match.
		specEdit := body.SpecSize != nil || body.SpecClass != nil || body.SpecForm != nil || body.SpecType != nil
		if specEdit && row.SetID != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spec of a set member cannot change; replace the member instead"})
		}
		if body.SpecSize != nil {
			row.SpecSize = *body.SpecSize
		}
		if body.SpecClass != nil {
			row.SpecClass = *body.SpecClass
		}
		if body.SpecForm != nil {
			row.SpecForm = *body.SpecForm
		}
		if body.SpecType != nil {
			row.SpecType = *body.SpecType
		}
		if err := repo.Save(nil, row); err != nil {
			return api.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, row)
	})

	// POST /api/gauges — register a spare
	g.POST("", func(c echo.Context) error {
		var body struct {
			SerialNumber   string `json:"serial_number"`
			EquipmentClass string `json:"equipment_class"`
			CategoryID     uint   `json:"category_id"`
			SpecSize       string `json:"spec_size"`
			SpecClass      string `json:"spec_class"`
			SpecForm       string `json:"spec_form"`
			SpecType       string `json:"spec_type"`
			OwnershipType  string `json:"ownership_type"`
			OwnerRef       string `json:"owner_ref"`
			Sealed         bool   `json:"sealed"`
			Location       string `json:"location"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.EquipmentClass == "" || body.CategoryID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment_class and category_id are required"})
		}
		row, err := engine.CreateSpare(lifecycle.CreateSpareRequest{
			SerialNumber:   body.SerialNumber,
			EquipmentClass: body.EquipmentClass,
			CategoryID:     body.CategoryID,
			SpecSize:       body.SpecSize,
			SpecClass:      body.SpecClass,
			SpecForm:       body.SpecForm,
			SpecType:       body.SpecType,
			OwnershipType:  body.OwnershipType,
			OwnerRef:       body.OwnerRef,
			Sealed:         body.Sealed,
			LocationCode:   body.Location,
			Actor:          auth.Actor(c),
		})
		if err != nil {
			return api.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, row)
	})
}
