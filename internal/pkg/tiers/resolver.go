package tiers

import (
	"time"

	"github.com/versemind/VerseMind/app/models"
	"github.com/versemind/VerseMind/internal/pkg/entitlements"
)

// Resolver computes the effective plan tier for a user. It is a pure
// decision function over subscription state, the trial window and the
// user's stored preference; it never mutates anything and never fails.
// Missing data always resolves to a tier, never to an error.
type Resolver struct {
	repo Repository
	cfg  TrialConfig
	now  func() time.Time
}

// NewResolver creates a resolver with the given lookups and trial window.
func NewResolver(repo Repository, cfg TrialConfig) *Resolver {
	return &Resolver{repo: repo, cfg: cfg, now: time.Now}
}

// WithClock overrides the resolver's time source. Only tests use this.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the effective tier for a user. Precedence, first match
// wins: anonymous/unknown identity, admin override, active premium
// subscription, then the standard-plan chain (trial window, active
// subscription, cancellation grace), then the authenticated default.
func (r *Resolver) Resolve(userID uint) entitlements.Plan {
	if userID == 0 {
		return entitlements.PlanFree
	}

	user, err := r.repo.GetUserByID(userID)
	if err != nil || user == nil || user.IsAnonymous {
		return entitlements.PlanFree
	}

	if user.IsAdmin() {
		return entitlements.PlanPremium
	}

	subs, err := r.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		subs = nil
	}

	if hasEntitlingSubscription(subs, models.SubscriptionPlanPremium) {
		return entitlements.PlanPremium
	}

	settings, err := r.repo.GetUserSettings(userID)
	if err != nil {
		settings = nil
	}

	if settings == nil || !settings.HasPlanPreference() {
		// Authenticated users without an explicit preference default to
		// standard so standard-tier limits apply to them.
		return entitlements.PlanStandard
	}

	switch entitlements.NormalizePlan(settings.Plan) {
	case entitlements.PlanPremium, entitlements.PlanStandard:
		// A premium preference without a live premium subscription never
		// grants premium; it falls through the standard chain.
		return r.resolveStandard(subs)
	default:
		return entitlements.PlanFree
	}
}

// resolveStandard walks the standard-access chain: open trial window,
// entitling standard subscription, then the post-cancellation grace period.
func (r *Resolver) resolveStandard(subs []models.Subscription) entitlements.Plan {
	now := r.now()

	if r.cfg.InTrial(now) {
		return entitlements.PlanStandard
	}

	if hasEntitlingSubscription(subs, models.SubscriptionPlanStandard) {
		return entitlements.PlanStandard
	}

	if r.inCancellationGrace(subs, now) {
		return entitlements.PlanStandard
	}

	return entitlements.PlanFree
}

func (r *Resolver) inCancellationGrace(subs []models.Subscription, now time.Time) bool {
	for i := range subs {
		sub := &subs[i]
		if sub.Plan != models.SubscriptionPlanStandard || !sub.IsCancelled() {
			continue
		}
		if now.Sub(sub.UpdatedAt) <= r.cfg.GraceWindow() {
			return true
		}
	}
	return false
}

func hasEntitlingSubscription(subs []models.Subscription, plan string) bool {
	for i := range subs {
		if subs[i].Plan == plan && subs[i].IsActiveFamily() {
			return true
		}
	}
	return false
}
