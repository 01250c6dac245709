package gauge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	entity "gaugetrack.GO/model/entity"
)

func testServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&entity.Gauge{},
		&entity.Category{},
		&entity.IdentifierSequence{},
		&entity.HistoryEntry{},
		&entity.Location{},
		&entity.Movement{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cat := entity.Category{Code: "SPG", Name: "Straight Thread Plug Gauges", EquipmentClass: entity.ClassThreadPlug}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	e := echo.New()
	RegisterGaugeRoutes(e.Group("/api"), db)
	return e, db
}

func mkSpare(t *testing.T, db *gorm.DB, serial string) *entity.Gauge {
	t.Helper()
	sn := serial
	g := &entity.Gauge{
		SerialNumber:   &sn,
		EquipmentClass: entity.ClassThreadPlug,
		CategoryID:     1,
		SpecSize:       "1/2-13",
		SpecClass:      "2B",
		SpecForm:       "UNC",
		SpecType:       "plug",
		Status:         entity.StatusAvailable,
		OwnershipType:  entity.OwnershipCompany,
		IsSpare:        true,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("create spare: %v", err)
	}
	return g
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestCreateEndpoint(t *testing.T) {
	e, db := testServer(t)

	rec := doJSON(e, http.MethodPost, "/api/gauges",
		`{"serial_number":"SN-1","equipment_class":"thread_plug","category_id":1,"spec_size":"1/2-13","spec_class":"2B","spec_form":"UNC","spec_type":"plug"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var count int64
	if err := db.Model(&entity.Gauge{}).Where("is_spare = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("spares = %d, want 1", count)
	}
}

func TestCreateEndpoint_DuplicateSerial(t *testing.T) {
	e, db := testServer(t)
	mkSpare(t, db, "SN-1")

	rec := doJSON(e, http.MethodPost, "/api/gauges",
		`{"serial_number":"SN-1","equipment_class":"thread_plug","category_id":1,"spec_size":"1/2-13","spec_class":"2B","spec_form":"UNC","spec_type":"plug"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestGetEndpoint_BySurrogateAndExternalID(t *testing.T) {
	e, db := testServer(t)
	g := mkSpare(t, db, "SN-1")
	ext := "SP0001A"
	g.ExternalID = &ext
	if err := db.Save(g).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	if rec := doJSON(e, http.MethodGet, "/api/gauges/"+itoa(g.GaugeID), ""); rec.Code != http.StatusOK {
		t.Fatalf("by id: %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/gauges/SP0001A", ""); rec.Code != http.StatusOK {
		t.Fatalf("by external id: %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/gauges/SP9999A", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown external id: %d, want 404", rec.Code)
	}
}

func TestListEndpoint_SpareFilter(t *testing.T) {
	e, db := testServer(t)
	mkSpare(t, db, "SN-1")
	g := mkSpare(t, db, "SN-2")
	g.IsSpare = false
	if err := db.Save(g).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := doJSON(e, http.MethodGet, "/api/gauges?spares=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestUpdateEndpoint_NonIdentityFields(t *testing.T) {
	e, db := testServer(t)
	g := mkSpare(t, db, "SN-1")

	rec := doJSON(e, http.MethodPut, "/api/gauges/"+itoa(g.GaugeID),
		`{"sealed":true,"owner_ref":"ACME","spec_class":"3B"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got entity.Gauge
	if err := db.First(&got, g.GaugeID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.Sealed {
		t.Error("sealed not persisted")
	}
	if got.OwnerRef == nil || *got.OwnerRef != "ACME" {
		t.Errorf("owner_ref = %v, want ACME", got.OwnerRef)
	}
	if got.SpecClass != "3B" {
		t.Errorf("spec_class = %q, want 3B", got.SpecClass)
	}
}

func TestUpdateEndpoint_SpecFrozenForSetMember(t *testing.T) {
	e, db := testServer(t)
	g := mkSpare(t, db, "SN-1")
	setID := "SP0001"
	g.SetID = &setID
	if err := db.Save(g).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := doJSON(e, http.MethodPut, "/api/gauges/"+itoa(g.GaugeID), `{"spec_class":"3B"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
	// Non-spec edits stay allowed for a paired member.
	if rec := doJSON(e, http.MethodPut, "/api/gauges/"+itoa(g.GaugeID), `{"sealed":true}`); rec.Code != http.StatusOK {
		t.Fatalf("sealed edit: %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestUpdateEndpoint_RetiredIsImmutable(t *testing.T) {
	e, db := testServer(t)
	g := mkSpare(t, db, "SN-1")
	now := time.Now()
	g.DeletedAt = &now
	g.Status = entity.StatusRetired
	if err := db.Save(g).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := doJSON(e, http.MethodPut, "/api/gauges/"+itoa(g.GaugeID), `{"sealed":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
}
