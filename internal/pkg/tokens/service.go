package tokens

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/versemind/VerseMind/app/models"
	"github.com/versemind/VerseMind/internal/pkg/entitlements"
)

// Service owns the token ledger: lazy creation, the daily reset rule,
// daily-first consumption and purchased-token top-ups. All mutations run in
// one short transaction holding an exclusive lock on the single ledger row,
// which is the only synchronization this core needs.
type Service struct {
	db       *gorm.DB
	recorder *Recorder
	now      func() time.Time
}

// NewService creates a token ledger service over the given DB handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, recorder: NewRecorder(db), now: time.Now}
}

// WithClock overrides the service's time source. Only tests use this.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetOrCreate returns the ledger for (identifier, plan), creating it at the
// full daily allowance on first access. A stale ledger is refilled before
// data is returned, and the refill is persisted: a virtual in-memory refresh
// would be silently reverted by the next concurrent writer. This read path
// takes no row lock; status readers may observe slightly stale balances.
func (s *Service) GetOrCreate(identifier string, plan entitlements.Plan) (*models.TokenLedger, error) {
	now := s.now()

	ledger, err := models.FindTokenLedger(s.db, identifier, plan)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ledger = models.NewTokenLedger(identifier, plan, now)
		if createErr := s.db.Create(ledger).Error; createErr != nil {
			// Lost a creation race; the winner's row is authoritative.
			ledger, err = models.FindTokenLedger(s.db, identifier, plan)
			if err != nil {
				return nil, err
			}
		} else {
			return ledger, nil
		}
	} else if err != nil {
		return nil, err
	}

	if !ledger.NeedsReset(now) {
		return ledger, nil
	}

	if err := s.persistReset(s.db, ledger, plan, now); err != nil {
		return nil, err
	}
	return models.FindTokenLedger(s.db, identifier, plan)
}

// Consume atomically spends cost tokens from the ledger, daily balance
// first, purchased balance second. Daily-first ordering preserves the
// non-expiring purchased credit for days when the daily grant runs out.
// Premium plans always succeed without decrementing. Insufficient funds is
// a structured failure with no mutation, not an error.
func (s *Service) Consume(identifier string, plan entitlements.Plan, cost int) (*ConsumeResult, error) {
	if cost < 0 {
		return &ConsumeResult{Success: false, Reason: ReasonInvalidAmount}, nil
	}

	var result *ConsumeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger, err := s.lockLedger(tx, identifier, plan)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.applyResetLocked(tx, ledger, plan, now); err != nil {
			return err
		}

		if !entitlements.IsUnlimited(plan) && ledger.TotalAvailable() < cost {
			result = &ConsumeResult{
				Success:            false,
				Reason:             ReasonInsufficientTokens,
				RemainingDaily:     ledger.AvailableTokens,
				RemainingPurchased: ledger.PurchasedTokens,
			}
			return nil
		}

		dailyUsed, purchasedUsed := 0, 0
		if !entitlements.IsUnlimited(plan) && cost > 0 {
			dailyUsed = cost
			if dailyUsed > ledger.AvailableTokens {
				dailyUsed = ledger.AvailableTokens
			}
			purchasedUsed = cost - dailyUsed

			ledger.AvailableTokens -= dailyUsed
			ledger.PurchasedTokens -= purchasedUsed
			ledger.TotalConsumedToday += cost

			if err := tx.Model(&models.TokenLedger{}).
				Where("id = ?", ledger.ID).
				Updates(map[string]interface{}{
					"available_tokens":     ledger.AvailableTokens,
					"purchased_tokens":     ledger.PurchasedTokens,
					"total_consumed_today": ledger.TotalConsumedToday,
				}).Error; err != nil {
				return err
			}
		}

		result = &ConsumeResult{
			Success:            true,
			DailyUsed:          dailyUsed,
			PurchasedUsed:      purchasedUsed,
			RemainingDaily:     ledger.AvailableTokens,
			RemainingPurchased: ledger.PurchasedTokens,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		s.recordEvent(identifier, models.TokenEventConsumed, EventPayload{
			Plan:               string(plan),
			Cost:               cost,
			DailyUsed:          result.DailyUsed,
			PurchasedUsed:      result.PurchasedUsed,
			RemainingDaily:     result.RemainingDaily,
			RemainingPurchased: result.RemainingPurchased,
		})
	}
	return result, nil
}

// AddPurchased credits purchased tokens to the ledger. Amounts ≤ 0 are a
// caller programming error and fail without touching the row. The operation
// is always additive; deduplicating repeated purchase callbacks is the
// payment collaborator's job.
func (s *Service) AddPurchased(identifier string, plan entitlements.Plan, amount int) (*TopUpResult, error) {
	if amount <= 0 {
		return &TopUpResult{Success: false, Reason: ReasonInvalidAmount}, nil
	}

	var result *TopUpResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger, err := s.lockLedger(tx, identifier, plan)
		if err != nil {
			return err
		}

		if err := s.applyResetLocked(tx, ledger, plan, s.now()); err != nil {
			return err
		}

		ledger.PurchasedTokens += amount
		if err := tx.Model(&models.TokenLedger{}).
			Where("id = ?", ledger.ID).
			Update("purchased_tokens", ledger.PurchasedTokens).Error; err != nil {
			return err
		}

		result = &TopUpResult{Success: true, NewPurchasedBalance: ledger.PurchasedTokens}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ledger, _ := models.FindTokenLedger(s.db, identifier, plan)
	payload := EventPayload{Plan: string(plan), Amount: amount, RemainingPurchased: result.NewPurchasedBalance}
	if ledger != nil {
		payload.RemainingDaily = ledger.AvailableTokens
	}
	s.recordEvent(identifier, models.TokenEventAdded, payload)

	return result, nil
}

// lockLedger loads the ledger row under an exclusive row lock, creating it
// lazily at full allowance. The lock serializes concurrent consumers of one
// (identifier, plan) key; requests against other keys never wait on it.
func (s *Service) lockLedger(tx *gorm.DB, identifier string, plan entitlements.Plan) (*models.TokenLedger, error) {
	q := tx
	// SQLite rejects FOR UPDATE and serializes writers on its own; only the
	// MySQL path needs the explicit row lock.
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ledger models.TokenLedger
	err := q.Where("identifier = ? AND plan = ?", identifier, string(plan)).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.NewTokenLedger(identifier, plan, s.now())
		if createErr := tx.Create(fresh).Error; createErr != nil {
			// Unique index tripped: another transaction created the row
			// first. Re-read it under the lock.
			err = q.Where("identifier = ? AND plan = ?", identifier, string(plan)).First(&ledger).Error
			if err != nil {
				return nil, err
			}
			return &ledger, nil
		}
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// applyResetLocked refills a stale daily balance in the caller's transaction.
// Purchased tokens are untouched; last_reset only ever moves forward.
func (s *Service) applyResetLocked(tx *gorm.DB, ledger *models.TokenLedger, plan entitlements.Plan, now time.Time) error {
	if !ledger.NeedsReset(now) {
		return nil
	}

	limit := entitlements.DailyTokenLimit(plan)
	ledger.AvailableTokens = limit
	ledger.DailyLimit = limit
	ledger.TotalConsumedToday = 0
	ledger.LastReset = models.UTCDate(now)

	return tx.Model(&models.TokenLedger{}).
		Where("id = ?", ledger.ID).
		Updates(map[string]interface{}{
			"available_tokens":     ledger.AvailableTokens,
			"daily_limit":          ledger.DailyLimit,
			"total_consumed_today": 0,
			"last_reset":           ledger.LastReset,
		}).Error
}

// persistReset is the lock-free variant for the read path. The guard on
// last_reset makes the refill a no-op when a concurrent writer already
// advanced the day, so the date can never move backward.
func (s *Service) persistReset(db *gorm.DB, ledger *models.TokenLedger, plan entitlements.Plan, now time.Time) error {
	limit := entitlements.DailyTokenLimit(plan)
	return db.Model(&models.TokenLedger{}).
		Where("id = ? AND last_reset < ?", ledger.ID, models.UTCDate(now)).
		Updates(map[string]interface{}{
			"available_tokens":     limit,
			"daily_limit":          limit,
			"total_consumed_today": 0,
			"last_reset":           models.UTCDate(now),
		}).Error
}

func (s *Service) recordEvent(identifier, eventType string, payload EventPayload) {
	if _, err := s.recorder.Record(identifier, eventType, payload); err != nil {
		log.Printf("token event record failed for %s: %v", identifier, err)
	}
}
