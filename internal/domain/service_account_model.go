package domain

import "time"

// ServiceAccount is an engine process identity allowed to call the config
// API. SecretHash is a bcrypt hash; the plain secret is never stored.
type ServiceAccount struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceID  string `gorm:"size:64;not null;uniqueIndex" json:"service_id"`
	Name       string `gorm:"size:255" json:"name"`
	SecretHash string `gorm:"size:255;not null" json:"-"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
