package tokens

// Business failure reasons surfaced to callers. These are structured
// results, not errors: a failed consumption still commits cleanly and the
// caller reports the reason to the end user.
const (
	ReasonInsufficientTokens = "insufficient tokens"
	ReasonInvalidAmount      = "invalid token amount"
)

// ConsumeResult is the per-source breakdown of one consumption attempt.
type ConsumeResult struct {
	Success            bool   `json:"success"`
	Reason             string `json:"reason,omitempty"`
	DailyUsed          int    `json:"daily_used"`
	PurchasedUsed      int    `json:"purchased_used"`
	RemainingDaily     int    `json:"remaining_daily"`
	RemainingPurchased int    `json:"remaining_purchased"`
}

// TopUpResult reports the outcome of a purchased-token credit.
type TopUpResult struct {
	Success             bool   `json:"success"`
	Reason              string `json:"reason,omitempty"`
	NewPurchasedBalance int    `json:"new_purchased_balance"`
}

// EventPayload is the analytics payload attached to every ledger event.
type EventPayload struct {
	Plan               string `json:"plan"`
	Cost               int    `json:"cost,omitempty"`
	Amount             int    `json:"amount,omitempty"`
	DailyUsed          int    `json:"daily_used"`
	PurchasedUsed      int    `json:"purchased_used"`
	RemainingDaily     int    `json:"remaining_daily"`
	RemainingPurchased int    `json:"remaining_purchased"`
}
