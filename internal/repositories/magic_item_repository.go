package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"arcanum/internal/models"
)

// summaryColumns is the projection used by every listing query. The image
// column is deliberately absent: full images never travel in list responses.
var summaryColumns = []string{"id", "created_at", "item_json", "thumbnail"}

type MagicItemRepository interface {
	Create(item *models.MagicItem) error
	GetByID(id string) (*models.MagicItem, error)
	ListSummaries(limit, offset int) ([]models.MagicItem, error)
	Delete(id string) error
}

type magicItemRepository struct {
	db *gorm.DB
}

func NewMagicItemRepository(db *gorm.DB) MagicItemRepository {
	return &magicItemRepository{db: db}
}

func (r *magicItemRepository) Create(item *models.MagicItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	if item.ItemJSON == "" {
		return fmt.Errorf("item data is required")
	}
	return r.db.Create(item).Error
}

func (r *magicItemRepository) GetByID(id string) (*models.MagicItem, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	var item models.MagicItem
	res := r.db.Where("id = ?", id).Take(&item)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &item, nil
}

func (r *magicItemRepository) ListSummaries(limit, offset int) ([]models.MagicItem, error) {
	if limit <= 0 {
		return []models.MagicItem{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	var items []models.MagicItem
	res := r.db.Select(summaryColumns).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items)
	if res.Error != nil {
		return nil, res.Error
	}
	return items, nil
}

func (r *magicItemRepository) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	return r.db.Where("id = ?", id).Delete(&models.MagicItem{}).Error
}
