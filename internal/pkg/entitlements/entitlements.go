package entitlements

import "strings"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

const (
	// FreeDailyTokens is the daily study-guide token allowance on the free tier.
	FreeDailyTokens = 20
	// StandardDailyTokens is the daily allowance for standard subscribers.
	StandardDailyTokens = 100
	// PremiumDailyTokens is a sentinel large enough that premium accounts
	// never exhaust it within a day. Premium still goes through the daily
	// reset bookkeeping so usage counters stay meaningful.
	PremiumDailyTokens = 1_000_000
)

// NormalizePlan maps arbitrary input to a known plan, defaulting to free.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanStandard):
		return PlanStandard
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// PlanRank orders plans so the best of several candidates can be picked.
func PlanRank(plan Plan) int {
	switch plan {
	case PlanPremium:
		return 2
	case PlanStandard:
		return 1
	default:
		return 0
	}
}

// DailyTokenLimit returns the allowance a ledger refills to for a plan.
func DailyTokenLimit(plan Plan) int {
	switch plan {
	case PlanPremium:
		return PremiumDailyTokens
	case PlanStandard:
		return StandardDailyTokens
	default:
		return FreeDailyTokens
	}
}

// IsUnlimited reports whether a plan is exempt from balance checks.
func IsUnlimited(plan Plan) bool {
	return plan == PlanPremium
}
