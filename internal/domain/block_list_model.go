package domain

import (
	"strings"
	"time"
)

// ItemKind classifies what a BlockItem points at.
type ItemKind string

const (
	ItemKindDomain      ItemKind = "domain"
	ItemKindApp         ItemKind = "app"
	ItemKindAppCategory ItemKind = "appCategory"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemKindDomain, ItemKindApp, ItemKindAppCategory:
		return true
	}
	return false
}

// BlockItem is a single blockable target belonging to exactly one BlockList.
type BlockItem struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       ItemKind `gorm:"size:20;not null;index" json:"kind"`
	Identifier string   `gorm:"size:255;not null" json:"identifier"`
	Name       string   `gorm:"size:255;not null" json:"name"`
	IsActive   bool     `gorm:"not null;default:true" json:"is_active"`
	ListID     uint     `gorm:"not null;index" json:"list_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BlockList is a named collection of BlockItems.
type BlockList struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string      `gorm:"size:255;not null;index" json:"name"`
	Description string      `gorm:"size:1024" json:"description"`
	IsActive    bool        `gorm:"not null;default:true" json:"is_active"`
	IsDefault   bool        `gorm:"not null;default:false" json:"is_default"`
	OwnerID     string      `gorm:"size:64;index" json:"owner_id"`
	Items       []BlockItem `gorm:"foreignKey:ListID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ActiveItems returns the items that are currently switched on.
func (l BlockList) ActiveItems() []BlockItem {
	var active []BlockItem
	for _, item := range l.Items {
		if item.IsActive {
			active = append(active, item)
		}
	}
	return active
}

// HasName reports whether the list carries the given name, ignoring case and
// surrounding whitespace.
func (l BlockList) HasName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(l.Name), strings.TrimSpace(name))
}
