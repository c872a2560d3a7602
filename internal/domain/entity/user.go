package entity

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// ProviderGoogle — идентификатор внешнего провайдера Google
const ProviderGoogle = "google"

// ProviderIdentity связывает локального пользователя с внешним провайдером
type ProviderIdentity struct {
	Provider   string `json:"provider" bson:"provider"`
	ProviderID string `json:"providerId" bson:"provider_id"`
}

// Providers — набор внешних идентичностей, хранится в JSONB
type Providers []ProviderIdentity

// Scan реализует интерфейс sql.Scanner для Providers
func (p *Providers) Scan(value interface{}) error {
	if value == nil {
		*p = Providers{}
		return nil
	}
	return scanJSONB(value, p)
}

// Value реализует интерфейс driver.Valuer для Providers
func (p Providers) Value() (driver.Value, error) {
	if len(p) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// User представляет пользователя в системе
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email" bson:"email"`
	Name      string    `gorm:"size:255;not null" json:"name" bson:"name"`
	Picture   string    `gorm:"size:512;not null;default:''" json:"picture,omitempty" bson:"picture,omitempty"`
	Providers Providers `gorm:"type:jsonb;not null" json:"providers" bson:"providers"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// NormalizeEmail приводит email к каноническому виду (как он хранится)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasProvider проверяет, привязан ли провайдер к пользователю
func (u *User) HasProvider(provider string) bool {
	for _, p := range u.Providers {
		if p.Provider == provider {
			return true
		}
	}
	return false
}

// AddProvider привязывает провайдера, если он еще не привязан.
// Возвращает true, если список провайдеров изменился.
func (u *User) AddProvider(provider, providerID string) bool {
	if u.HasProvider(provider) {
		return false
	}
	u.Providers = append(u.Providers, ProviderIdentity{Provider: provider, ProviderID: providerID})
	return true
}
