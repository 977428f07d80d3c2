package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/versemind/VerseMind/internal/pkg/entitlements"
)

// TokenLedger tracks the daily and purchased token balances for one
// (identifier, plan) pair. Rows are created lazily at the full daily
// allowance and are never deleted.
type TokenLedger struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Identifier         string    `gorm:"type:varchar(191);not null;index:ux_token_ledgers_identifier_plan,unique,priority:1" json:"identifier"`
	Plan               string    `gorm:"type:varchar(50);not null;index:ux_token_ledgers_identifier_plan,unique,priority:2" json:"plan"`
	AvailableTokens    int       `gorm:"not null;default:0" json:"available_tokens"`
	PurchasedTokens    int       `gorm:"not null;default:0" json:"purchased_tokens"`
	DailyLimit         int       `gorm:"not null;default:0" json:"daily_limit"`
	LastReset          time.Time `gorm:"type:timestamp;not null" json:"last_reset"`
	TotalConsumedToday int       `gorm:"not null;default:0" json:"total_consumed_today"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewTokenLedger builds a fresh ledger at the plan's full daily allowance.
func NewTokenLedger(identifier string, plan entitlements.Plan, now time.Time) *TokenLedger {
	limit := entitlements.DailyTokenLimit(plan)
	return &TokenLedger{
		Identifier:      identifier,
		Plan:            string(plan),
		AvailableTokens: limit,
		PurchasedTokens: 0,
		DailyLimit:      limit,
		LastReset:       UTCDate(now),
	}
}

// NeedsReset reports whether the stored reset date precedes now's UTC
// calendar date. The day boundary is UTC midnight for everyone; elapsed
// hours play no role.
func (l *TokenLedger) NeedsReset(now time.Time) bool {
	return UTCDate(l.LastReset).Before(UTCDate(now))
}

// TotalAvailable is the combined spendable balance.
func (l *TokenLedger) TotalAvailable() int {
	return l.AvailableTokens + l.PurchasedTokens
}

// UTCDate truncates a timestamp to its UTC calendar date.
func UTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FindTokenLedger loads a ledger row without creating or locking it.
func FindTokenLedger(db *gorm.DB, identifier string, plan entitlements.Plan) (*TokenLedger, error) {
	var l TokenLedger
	err := db.Where("identifier = ? AND plan = ?", identifier, string(plan)).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}
