package models

import "time"

const (
	TokenEventConsumed = "token_consumed"
	TokenEventAdded    = "token_added"
)

// TokenEvent is an append-only analytics record for every ledger mutation.
// Rows are written once and never updated; only external dashboards read them.
type TokenEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventUUID   string    `gorm:"type:char(36);not null;uniqueIndex" json:"event_uuid"`
	Identifier  string    `gorm:"type:varchar(191);not null;index" json:"identifier"`
	EventType   string    `gorm:"type:varchar(32);not null;index" json:"event_type"`
	PayloadJSON string    `gorm:"type:longtext" json:"payload_json"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
