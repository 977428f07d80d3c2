package models

import "time"

const (
	SubscriptionStatusActive              = "active"
	SubscriptionStatusAuthenticated       = "authenticated"
	SubscriptionStatusPendingCancellation = "pending_cancellation"
	SubscriptionStatusCancelled           = "cancelled"
	SubscriptionStatusExpired             = "expired"
)

const (
	SubscriptionPlanStandard = "standard"
	SubscriptionPlanPremium  = "premium"
)

// Subscription mirrors payment-provider subscription state. The quota core
// only ever reads these rows; the payment webhook service owns writes.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	Plan                   string     `gorm:"type:varchar(50);not null;index" json:"plan"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"provider_subscription_id"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveFamily reports whether the status still entitles the subscriber.
// Pending cancellation keeps access until the period actually ends.
func (s *Subscription) IsActiveFamily() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusAuthenticated, SubscriptionStatusPendingCancellation:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the subscription was explicitly cancelled.
func (s *Subscription) IsCancelled() bool {
	return s.Status == SubscriptionStatusCancelled
}
