package apiv1

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// ConsumeRequest asks the engine to spend tokens for one generation request.
// The caller computes the cost (language, complexity); this core treats it
// as an opaque integer. Identifier defaults to "user:<user_id>" when empty,
// anonymous sessions pass their own identifier.
type ConsumeRequest struct {
	UserID     uint   `json:"user_id"`
	Identifier string `json:"identifier" validate:"omitempty,max=191"`
	Cost       int    `json:"cost" validate:"gte=0"`
}

// PurchaseRequest credits purchased tokens after a completed payment.
type PurchaseRequest struct {
	Identifier string `json:"identifier" validate:"required,max=191"`
	Plan       string `json:"plan" validate:"required,oneof=free standard premium"`
	Amount     int    `json:"amount"`
}

// TokenStatusResponse is the read-only balance snapshot shown in the UI.
type TokenStatusResponse struct {
	Identifier         string `json:"identifier"`
	Plan               string `json:"plan"`
	AvailableTokens    int    `json:"available_tokens"`
	PurchasedTokens    int    `json:"purchased_tokens"`
	DailyLimit         int    `json:"daily_limit"`
	TotalConsumedToday int    `json:"total_consumed_today"`
}

// PlanPreferenceRequest stores a user's self-selected plan. The preference
// feeds the tier resolver; it grants nothing by itself.
type PlanPreferenceRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Plan   string `json:"plan" validate:"required,oneof=free standard premium"`
}

// TierResponse reports the resolved effective plan for a user.
type TierResponse struct {
	UserID uint   `json:"user_id"`
	Tier   string `json:"tier"`
}
