package models

import "time"

// Payment completeness for the current billing period. The schema keeps a
// free string so a partial split could be stored, but the active business
// rule only ever writes none or full.
const (
	PartNone = "none"
	PartFull = "full"
)

const (
	ManualStatusPending  = "pending"
	ManualStatusApproved = "approved"
	ManualStatusRejected = "rejected"
)

const (
	PaymentModeNew     = "new"
	PaymentModeRenewal = "renewal"
)

// Subscription tracks one user's paid access to one plan's group. At most
// one active row exists per (user, plan); renewal rewrites this row instead
// of inserting a new one.
type Subscription struct {
	ID                 string    `gorm:"type:text;primaryKey" json:"id"`
	UserID             int64     `gorm:"index:idx_sub_user_plan" json:"userId"`
	PlanID             uint      `gorm:"index:idx_sub_user_plan" json:"planId"`
	GroupID            int64     `json:"groupId"`
	Active             bool      `gorm:"default:true" json:"active"`
	Removed            bool      `gorm:"default:false" json:"removed"`
	StartTS            int64     `json:"startTs"`
	EndTS              int64     `json:"endTs"`
	PeriodMonth        int       `json:"periodMonth"`
	PeriodYear         int       `json:"periodYear"`
	PartPaid           string    `gorm:"default:none" json:"partPaid"`
	InviteLink         *string   `json:"inviteLink,omitempty"`
	LastNotificationTS *int64    `json:"lastNotificationTs,omitempty"`
	Plan               Plan      `gorm:"foreignKey:PlanID" json:"plan"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Invoice correlates a pending card payment with its business intent, keyed
// by the opaque payload sent to the gateway. The success callback is
// validated against this row, never trusted on its own.
type Invoice struct {
	Payload     string    `gorm:"type:text;primaryKey" json:"payload"`
	UserID      int64     `json:"userId"`
	PlanID      uint      `json:"planId"`
	AmountCents int64     `json:"amountCents"`
	PeriodMonth int       `json:"periodMonth"`
	PeriodYear  int       `json:"periodYear"`
	PromoID     *uint     `json:"promoId,omitempty"`
	Mode        string    `json:"mode"` // new, renewal
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ManualPayment is a receipt-review ticket. Terminal once reviewed.
type ManualPayment struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	UserID        int64      `gorm:"index" json:"userId"`
	PlanID        uint       `json:"planId"`
	AmountCents   int64      `json:"amountCents"`
	ReceiptFileID string     `json:"receiptFileId"`
	FullName      string     `json:"fullName"`
	Status        string     `gorm:"default:pending" json:"status"`
	AdminID       *int64     `json:"adminId,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	PeriodMonth   int        `json:"periodMonth"`
	PeriodYear    int        `json:"periodYear"`
	PromoID       *uint      `json:"promoId,omitempty"`
	Plan          Plan       `gorm:"foreignKey:PlanID" json:"plan"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// PromoCode carries exactly one of DiscountPercent or DiscountFixedCents.
type PromoCode struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Code               string    `gorm:"uniqueIndex" json:"code"`
	DiscountPercent    *int      `json:"discountPercent,omitempty"`
	DiscountFixedCents *int64    `json:"discountFixedCents,omitempty"`
	IsActive           bool      `gorm:"default:true" json:"isActive"`
	UsedCount          int       `gorm:"default:0" json:"usedCount"`
	MaxUses            *int      `json:"maxUses,omitempty"`
	ExpiresTS          *int64    `json:"expiresTs,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PromoUsage enforces single use per (promo, user).
type PromoUsage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PromoID   uint      `gorm:"uniqueIndex:idx_promo_user" json:"promoId"`
	UserID    int64     `gorm:"uniqueIndex:idx_promo_user" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
