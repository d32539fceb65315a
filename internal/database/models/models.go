package models

import "time"

type User struct {
	UserID        int64     `gorm:"primaryKey" json:"id"` // Telegram ID
	ReferredBy    *int64    `json:"referredBy,omitempty"`
	CashbackCents int64     `gorm:"default:0" json:"cashbackCents"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ManagedGroup is a chat the bot administers and sells access to.
type ManagedGroup struct {
	ChatID    int64     `gorm:"primaryKey" json:"chatId"` // Telegram ID
	Title     string    `json:"title"`
	Type      string    `gorm:"default:group" json:"type"`
	IsDefault bool      `gorm:"default:false" json:"isDefault"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Plan is a sellable monthly offering bound to a study group chat.
type Plan struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	PriceCents  int64     `json:"priceCents"`
	Description string    `json:"description"`
	CategoryID  *uint     `json:"categoryId,omitempty"`
	GroupID     *int64    `json:"groupId,omitempty"` // fixed access group, falls back to default
	MediaFileID string    `json:"mediaFileId,omitempty"`
	MediaType   string    `json:"mediaType,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	PaymentMethodCard   = "card"
	PaymentMethodManual = "manual"
)

// PaymentMethod is an admin-toggleable way to pay. The manual method carries
// free-text bank details shown to the user as-is.
type PaymentMethod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"` // card, manual
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	Description string    `json:"description"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
