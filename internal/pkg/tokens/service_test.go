package tokens

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/versemind/VerseMind/app/models"
	"github.com/versemind/VerseMind/internal/pkg/entitlements"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TokenLedger{}, &models.TokenEvent{}))

	// A single connection keeps every goroutine on the same in-memory
	// database and serializes transactions the way MySQL row locks would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestService(t *testing.T) *Service {
	return NewService(setupTestDB(t))
}

func TestGetOrCreateNewFreeLedger(t *testing.T) {
	s := newTestService(t)

	ledger, err := s.GetOrCreate("user:7", entitlements.PlanFree)
	require.NoError(t, err)

	assert.Equal(t, 20, ledger.AvailableTokens)
	assert.Equal(t, 0, ledger.PurchasedTokens)
	assert.Equal(t, 20, ledger.DailyLimit)
	assert.Equal(t, 0, ledger.TotalConsumedToday)
}

func TestGetOrCreateIsIdempotentSameDay(t *testing.T) {
	s := newTestService(t)

	first, err := s.GetOrCreate("user:7", entitlements.PlanStandard)
	require.NoError(t, err)
	second, err := s.GetOrCreate("user:7", entitlements.PlanStandard)
	require.NoError(t, err)

	assert.Equal(t, first.AvailableTokens, second.AvailableTokens)
	assert.Equal(t, first.PurchasedTokens, second.PurchasedTokens)
	assert.True(t, first.LastReset.Equal(second.LastReset))
}

func TestGetOrCreatePersistsDailyReset(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC)

	s := newTestService(t).WithClock(func() time.Time { return day1 })

	_, err := s.GetOrCreate("user:7", entitlements.PlanFree)
	require.NoError(t, err)

	res, err := s.Consume("user:7", entitlements.PlanFree, 12)
	require.NoError(t, err)
	require.True(t, res.Success)

	topup, err := s.AddPurchased("user:7", entitlements.PlanFree, 30)
	require.NoError(t, err)
	require.True(t, topup.Success)

	s.WithClock(func() time.Time { return day2 })

	ledger, err := s.GetOrCreate("user:7", entitlements.PlanFree)
	require.NoError(t, err)

	// Reset refills the daily balance and zeroes the counter, but the
	// purchased balance carries over untouched.
	assert.Equal(t, 20, ledger.AvailableTokens)
	assert.Equal(t, 0, ledger.TotalConsumedToday)
	assert.Equal(t, 30, ledger.PurchasedTokens)
	assert.True(t, ledger.LastReset.Equal(models.UTCDate(day2)))

	// The refill was written, not virtual: a raw read sees the same state.
	raw, err := models.FindTokenLedger(s.db, "user:7", entitlements.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 20, raw.AvailableTokens)
	assert.True(t, raw.LastReset.Equal(models.UTCDate(day2)))
}

func TestConsumeDailyOnly(t *testing.T) {
	s := newTestService(t)

	res, err := s.Consume("user:7", entitlements.PlanStandard, 40)
	require.NoError(t, err)

	require.True(t, res.Success)
	assert.Equal(t, 40, res.DailyUsed)
	assert.Equal(t, 0, res.PurchasedUsed)
	assert.Equal(t, 60, res.RemainingDaily)
	assert.Equal(t, 0, res.RemainingPurchased)
}

func TestConsumeDailyFirstThenPurchased(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetOrCreate("user:7", entitlements.PlanStandard)
	require.NoError(t, err)
	_, err = s.AddPurchased("user:7", entitlements.PlanStandard, 50)
	require.NoError(t, err)

	// Burn the daily balance down to 15.
	res, err := s.Consume("user:7", entitlements.PlanStandard, 85)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 15, res.RemainingDaily)

	// 30 > 15 daily: 15 from daily, 15 from purchased.
	res, err = s.Consume("user:7", entitlements.PlanStandard, 30)
	require.NoError(t, err)

	require.True(t, res.Success)
	assert.Equal(t, 15, res.DailyUsed)
	assert.Equal(t, 15, res.PurchasedUsed)
	assert.Equal(t, 0, res.RemainingDaily)
	assert.Equal(t, 35, res.RemainingPurchased)
}

func TestConsumeExactTotalDrainsBothBalances(t *testing.T) {
	s := newTestService(t)

	_, err := s.AddPurchased("user:7", entitlements.PlanFree, 5)
	require.NoError(t, err)

	res, err := s.Consume("user:7", entitlements.PlanFree, 25)
	require.NoError(t, err)

	require.True(t, res.Success)
	assert.Equal(t, 20, res.DailyUsed)
	assert.Equal(t, 5, res.PurchasedUsed)
	assert.Equal(t, 0, res.RemainingDaily)
	assert.Equal(t, 0, res.RemainingPurchased)
}

func TestConsumeInsufficientTokens(t *testing.T) {
	s := newTestService(t)

	_, err := s.Consume("user:7", entitlements.PlanFree, 15)
	require.NoError(t, err)

	res, err := s.Consume("user:7", entitlements.PlanFree, 100)
	require.NoError(t, err)

	require.False(t, res.Success)
	assert.Equal(t, ReasonInsufficientTokens, res.Reason)

	// Balances unchanged by the failed attempt.
	ledger, err := models.FindTokenLedger(s.db, "user:7", entitlements.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 5, ledger.AvailableTokens)
	assert.Equal(t, 0, ledger.PurchasedTokens)
}

func TestConsumeZeroCostSucceeds(t *testing.T) {
	s := newTestService(t)

	res, err := s.Consume("user:7", entitlements.PlanFree, 0)
	require.NoError(t, err)

	require.True(t, res.Success)
	assert.Equal(t, 0, res.DailyUsed)
	assert.Equal(t, 20, res.RemainingDaily)
}

func TestConsumeNegativeCostRejected(t *testing.T) {
	s := newTestService(t)

	res, err := s.Consume("user:7", entitlements.PlanFree, -3)
	require.NoError(t, err)

	require.False(t, res.Success)
	assert.Equal(t, ReasonInvalidAmount, res.Reason)
}

func TestConsumePremiumNeverBlocks(t *testing.T) {
	s := newTestService(t)

	res, err := s.Consume("user:7", entitlements.PlanPremium, 50000)
	require.NoError(t, err)

	require.True(t, res.Success)
	assert.Equal(t, 0, res.DailyUsed)
	assert.Equal(t, 0, res.PurchasedUsed)
	assert.Equal(t, entitlements.PremiumDailyTokens, res.RemainingDaily)

	// The sentinel balance is never decremented.
	ledger, err := models.FindTokenLedger(s.db, "user:7", entitlements.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, entitlements.PremiumDailyTokens, ledger.AvailableTokens)
}

func TestAddPurchased(t *testing.T) {
	s := newTestService(t)

	res, err := s.AddPurchased("user:7", entitlements.PlanFree, 100)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 100, res.NewPurchasedBalance)

	// Additive, never overwriting.
	res, err = s.AddPurchased("user:7", entitlements.PlanFree, 25)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 125, res.NewPurchasedBalance)
}

func TestAddPurchasedRejectsNonPositiveAmounts(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetOrCreate("user:7", entitlements.PlanFree)
	require.NoError(t, err)

	for _, amount := range []int{0, -10} {
		res, err := s.AddPurchased("user:7", entitlements.PlanFree, amount)
		require.NoError(t, err)
		require.False(t, res.Success, "amount %d", amount)
		assert.Equal(t, ReasonInvalidAmount, res.Reason)
	}

	ledger, err := models.FindTokenLedger(s.db, "user:7", entitlements.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.PurchasedTokens)
}

func TestConsumeAppliesResetInline(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	s := newTestService(t).WithClock(func() time.Time { return day1 })

	res, err := s.Consume("user:7", entitlements.PlanFree, 20)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 0, res.RemainingDaily)

	s.WithClock(func() time.Time { return day2 })

	// The very first touch on the new day is evaluated against a refilled
	// allowance, not yesterday's empty balance.
	res, err = s.Consume("user:7", entitlements.PlanFree, 8)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 8, res.DailyUsed)
	assert.Equal(t, 12, res.RemainingDaily)
}

func TestConcurrentConsumptionNeverDoubleSpends(t *testing.T) {
	s := newTestService(t)

	const n = 20 // free plan daily limit

	var wg sync.WaitGroup
	successes := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Consume("user:7", entitlements.PlanFree, 1)
			if err != nil {
				t.Errorf("consume failed: %v", err)
				return
			}
			successes <- res.Success
		}()
	}
	wg.Wait()
	close(successes)

	succeeded := 0
	for ok := range successes {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, n, succeeded, "all cost-1 consumes against balance %d must succeed", n)

	ledger, err := models.FindTokenLedger(s.db, "user:7", entitlements.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.AvailableTokens, "balance drained exactly to zero")
	assert.GreaterOrEqual(t, ledger.PurchasedTokens, 0)
	assert.Equal(t, n, ledger.TotalConsumedToday)
}

func TestConsumeRecordsEvent(t *testing.T) {
	s := newTestService(t)

	_, err := s.Consume("user:7", entitlements.PlanFree, 4)
	require.NoError(t, err)

	var events []models.TokenEvent
	require.NoError(t, s.db.Where("identifier = ?", "user:7").Find(&events).Error)
	require.Len(t, events, 1)

	assert.Equal(t, models.TokenEventConsumed, events[0].EventType)
	assert.NotEmpty(t, events[0].EventUUID)
	assert.Contains(t, events[0].PayloadJSON, `"daily_used":4`)
	assert.Contains(t, events[0].PayloadJSON, `"remaining_daily":16`)
}

func TestTopUpRecordsEvent(t *testing.T) {
	s := newTestService(t)

	_, err := s.AddPurchased("user:7", entitlements.PlanStandard, 60)
	require.NoError(t, err)

	var events []models.TokenEvent
	require.NoError(t, s.db.Where("event_type = ?", models.TokenEventAdded).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].PayloadJSON, `"amount":60`)
	assert.Contains(t, events[0].PayloadJSON, `"remaining_purchased":60`)
}
