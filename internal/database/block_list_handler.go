package database

import (
	"errors"
	"fmt"
	"strings"

	"warden/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrBlockListNotFound     = errors.New("block list not found")
	ErrBlockItemNotFound     = errors.New("block item not found")
	ErrBlockListNameRequired = errors.New("block list name is required")
	ErrBlockItemInvalidKind  = errors.New("block item kind is invalid")
)

func GetBlockLists() ([]domain.BlockList, error) {
	if DB == nil {
		return nil, fmt.Errorf("block list: database connection was not initialised")
	}

	var lists []domain.BlockList
	if err := DB.
		Preload("Items").
		Order("created_at ASC").
		Find(&lists).Error; err != nil {
		return nil, err
	}

	return lists, nil
}

func GetBlockListByID(listID uint) (*domain.BlockList, error) {
	if DB == nil {
		return nil, fmt.Errorf("block list: database connection was not initialised")
	}

	var list domain.BlockList
	if err := DB.
		Preload("Items").
		First(&list, listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockListNotFound
		}
		return nil, err
	}

	return &list, nil
}

func CreateBlockList(list domain.BlockList) (domain.BlockList, error) {
	if DB == nil {
		return domain.BlockList{}, fmt.Errorf("block list: database connection was not initialised")
	}

	list.Name = strings.TrimSpace(list.Name)
	if list.Name == "" {
		return domain.BlockList{}, ErrBlockListNameRequired
	}
	for _, item := range list.Items {
		if !item.Kind.Valid() {
			return domain.BlockList{}, ErrBlockItemInvalidKind
		}
	}

	list.ID = 0
	if err := DB.Create(&list).Error; err != nil {
		return domain.BlockList{}, err
	}

	return list, nil
}

// UpdateBlockList updates list metadata. Items are managed through
// AddBlockItems / DeleteBlockItem and are left untouched here.
func UpdateBlockList(listID uint, update domain.BlockList) (*domain.BlockList, error) {
	if DB == nil {
		return nil, fmt.Errorf("block list: database connection was not initialised")
	}

	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, ErrBlockListNameRequired
	}

	var list domain.BlockList
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&list, listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlockListNotFound
			}
			return err
		}

		payload := map[string]interface{}{
			"name":        name,
			"description": update.Description,
			"is_active":   update.IsActive,
			"is_default":  update.IsDefault,
		}
		if err := tx.Model(&list).Updates(payload).Error; err != nil {
			return err
		}

		return tx.Preload("Items").First(&list, listID).Error
	})
	if err != nil {
		return nil, err
	}

	return &list, nil
}

func DeleteBlockList(listID uint) error {
	if DB == nil {
		return fmt.Errorf("block list: database connection was not initialised")
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.BlockList{}, listID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBlockListNotFound
		}
		// Items cascade in postgres; do it explicitly so sqlite behaves the
		// same in tests.
		return tx.Where("list_id = ?", listID).Delete(&domain.BlockItem{}).Error
	})
}

func AddBlockItems(listID uint, items []domain.BlockItem) ([]domain.BlockItem, error) {
	if DB == nil {
		return nil, fmt.Errorf("block list: database connection was not initialised")
	}

	for _, item := range items {
		if !item.Kind.Valid() {
			return nil, ErrBlockItemInvalidKind
		}
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		var list domain.BlockList
		if err := tx.First(&list, listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlockListNotFound
			}
			return err
		}

		for i := range items {
			items[i].ID = 0
			items[i].ListID = listID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

func DeleteBlockItem(listID, itemID uint) error {
	if DB == nil {
		return fmt.Errorf("block list: database connection was not initialised")
	}

	res := DB.Where("list_id = ? AND id = ?", listID, itemID).Delete(&domain.BlockItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlockItemNotFound
	}
	return nil
}
