package gauge

import (
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	entity "gaugetrack.GO/model/entity"
)

type GaugeRepository struct {
	db *gorm.DB
}

var (
	instances   = make(map[*gorm.DB]*GaugeRepository)
	instancesMu sync.Mutex
)

// GetGaugeRepository returns a shared repository for the given DB.
func GetGaugeRepository(db *gorm.DB) *GaugeRepository {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	if r, ok := instances[db]; ok {
		return r
	}
	r := NewGaugeRepository(db)
	instances[db] = r
	return r
}

func NewGaugeRepository(db *gorm.DB) *GaugeRepository {
	return &GaugeRepository{db: db}
}

func (r *GaugeRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// forUpdate adds an exclusive row lock on MySQL. SQLite (tests) has no
// FOR UPDATE syntax; its single-writer transaction lock serializes there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ByID returns one gauge, deleted or not.
func (r *GaugeRepository) ByID(tx *gorm.DB, id uint) (*entity.Gauge, error) {
	var g entity.Gauge
	if err := r.handle(tx).Where("gauge_id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// ByExternalID returns the non-deleted gauge carrying the display identifier.
func (r *GaugeRepository) ByExternalID(externalID string) (*entity.Gauge, error) {
	var g entity.Gauge
	err := r.db.Where("external_id = ? AND deleted_at IS NULL", externalID).First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// LockByIDs locks the given gauge rows for update, in ascending
// surrogate-id order (the fixed lock order all lifecycle operations
// share — prevents deadlocks between overlapping calls). Returns rows
// keyed by id; absent ids are simply missing from the map.
func (r *GaugeRepository) LockByIDs(tx *gorm.DB, ids ...uint) (map[uint]*entity.Gauge, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var rows []*entity.Gauge
	err := forUpdate(tx).
		Where("gauge_id IN ?", sorted).
		Order("gauge_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]*entity.Gauge, len(rows))
	for _, g := range rows {
		out[g.GaugeID] = g
	}
	return out, nil
}

// LockSetMembers locks all non-deleted members of a set for update,
// ascending by gauge_id.
func (r *GaugeRepository) LockSetMembers(tx *gorm.DB, setID string) ([]*entity.Gauge, error) {
	var rows []*entity.Gauge
	err := forUpdate(tx).
		Where("set_id = ? AND deleted_at IS NULL", setID).
		Order("gauge_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AllSetMembers returns every member row of a set, deleted included
// (retired sets keep their linkage and stay renderable).
func (r *GaugeRepository) AllSetMembers(setID string) ([]*entity.Gauge, error) {
	var rows []*entity.Gauge
	err := r.db.
		Where("set_id = ?", setID).
		Order("gauge_id ASC").
		Find(&rows).Error
	return rows, err
}

// SetMembers returns non-deleted members of a set without locking
// (read paths).
func (r *GaugeRepository) SetMembers(setID string) ([]*entity.Gauge, error) {
	var rows []*entity.Gauge
	err := r.db.
		Where("set_id = ? AND deleted_at IS NULL", setID).
		Order("gauge_id ASC").
		Find(&rows).Error
	return rows, err
}

// IdentifierActive reports whether any non-deleted gauge currently
// carries the identifier as its set id or external id (including the
// derived member ids setID+A / setID+B).
func (r *GaugeRepository) IdentifierActive(tx *gorm.DB, identifier string) (bool, error) {
	var count int64
	err := r.handle(tx).Model(&entity.Gauge{}).
		Where("deleted_at IS NULL").
		Where("set_id = ? OR external_id IN ?", identifier,
			[]string{identifier, identifier + entity.SuffixGo, identifier + entity.SuffixNoGo}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	CategoryID uint
	Status     string
	SparesOnly bool
	SetID      string
	Limit      int
	Offset     int
}

// List returns non-deleted gauges matching the filter, ascending by id.
func (r *GaugeRepository) List(f ListFilter) ([]*entity.Gauge, error) {
	q := r.db.Where("deleted_at IS NULL")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SparesOnly {
		q = q.Where("is_spare = 1")
	}
	if f.SetID != "" {
		q = q.Where("set_id = ?", f.SetID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []*entity.Gauge
	err := q.Order("gauge_id ASC").Find(&rows).Error
	return rows, err
}

// Create inserts a new gauge row.
func (r *GaugeRepository) Create(tx *gorm.DB, g *entity.Gauge) error {
	return r.handle(tx).Create(g).Error
}

// Save writes all fields of an already-loaded gauge row.
func (r *GaugeRepository) Save(tx *gorm.DB, g *entity.Gauge) error {
	return r.handle(tx).Save(g).Error
}

// SerialExists reports whether a serial number is already registered
// (deleted rows included — serials are immutable identity).
func (r *GaugeRepository) SerialExists(tx *gorm.DB, serial string) (bool, error) {
	var count int64
	err := r.handle(tx).Model(&entity.Gauge{}).
		Where("serial_number = ?", serial).
		Count(&count).Error
	return count > 0, err
}

// SpareCounts returns spare-pool sizes per category (cache warm job,
// dashboards).
func (r *GaugeRepository) SpareCounts() (map[uint]int64, error) {
	type row struct {
		CategoryID uint
		N          int64
	}
	var rows []row
	err := r.db.Model(&entity.Gauge{}).
		Select("category_id, COUNT(*) AS n").
		Where("is_spare = 1 AND deleted_at IS NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, rw := range rows {
		out[rw.CategoryID] = rw.N
	}
	return out, nil
}

// IncompleteSets returns set ids that have exactly one non-deleted
// member left (one member lost/retired out-of-band). Durable state;
// needs operator action, never auto-expires.
func (r *GaugeRepository) IncompleteSets() ([]string, error) {
	var ids []string
	err := r.db.Model(&entity.Gauge{}).
		Select("set_id").
		Where("set_id IS NOT NULL AND deleted_at IS NULL").
		Group("set_id").
		Having("COUNT(*) = 1").
		Pluck("set_id", &ids).Error
	return ids, err
}
