package database

import (
	"errors"
	"fmt"

	"warden/internal/domain"

	"gorm.io/gorm"
)

var ErrAppCategoryNotFound = errors.New("app category not found")

func GetAppCategories() ([]domain.AppCategory, error) {
	if DB == nil {
		return nil, fmt.Errorf("app category: database connection was not initialised")
	}

	var categories []domain.AppCategory
	if err := DB.
		Order("system_id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

// UpdateAppCategory edits the catalog entry; the SystemID itself is
// immutable since items refer to it.
func UpdateAppCategory(categoryID uint, update domain.AppCategory) (*domain.AppCategory, error) {
	if DB == nil {
		return nil, fmt.Errorf("app category: database connection was not initialised")
	}

	var category domain.AppCategory
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppCategoryNotFound
			}
			return err
		}

		payload := map[string]interface{}{
			"name":        update.Name,
			"description": update.Description,
			"is_active":   update.IsActive,
		}
		if err := tx.Model(&category).Updates(payload).Error; err != nil {
			return err
		}

		return tx.First(&category, categoryID).Error
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}
