package database

import (
	"errors"
	"fmt"

	"warden/internal/auth"
	"warden/internal/domain"

	"gorm.io/gorm"
)

// ErrServiceAuthFailed deliberately does not distinguish unknown identities
// from wrong secrets.
var ErrServiceAuthFailed = errors.New("service authentication failed")

func AuthenticateService(serviceID, secret string) (*domain.ServiceAccount, error) {
	if DB == nil {
		return nil, fmt.Errorf("service account: database connection was not initialised")
	}

	var account domain.ServiceAccount
	if err := DB.Where("service_id = ? AND is_active = ?", serviceID, true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceAuthFailed
		}
		return nil, err
	}

	if !auth.CheckSecretHash(secret, account.SecretHash) {
		return nil, ErrServiceAuthFailed
	}

	return &account, nil
}
