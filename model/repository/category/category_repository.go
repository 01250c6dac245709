package category

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	entity "gaugetrack.GO/model/entity"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ByID returns one category.
func (r *CategoryRepository) ByID(tx *gorm.DB, id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.handle(tx).Where("category_id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ByCode returns one category by its short code.
func (r *CategoryRepository) ByCode(code string) (*entity.Category, error) {
	var c entity.Category
	if err := r.db.Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// All returns every category, ascending by id.
func (r *CategoryRepository) All() ([]*entity.Category, error) {
	var rows []*entity.Category
	err := r.db.Order("category_id ASC").Find(&rows).Error
	return rows, err
}

// Seed inserts categories that do not exist yet (matched on code).
func (r *CategoryRepository) Seed(rows []entity.Category) (int, error) {
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
