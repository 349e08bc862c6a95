package domain

import "time"

// AppCategory is an independent catalog entity describing a class of
// applications (games, social, ...) that items of kind appCategory refer to
// through SystemID.
type AppCategory struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SystemID    string `gorm:"size:64;not null;uniqueIndex" json:"system_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:1024" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
