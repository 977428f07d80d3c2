package repository

import (
	"github.com/versemind/VerseMind/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetSettings(userID uint) (*models.UserSettings, error)
	GetOrCreateSettings(userID uint) (*models.UserSettings, error)
	SaveSettings(settings *models.UserSettings) error
	Update(user *models.User) error
	Count() (int64, error)
}

// SubscriptionRepository defines read access to payment-provider subscription
// state. The quota core never writes subscriptions.
type SubscriptionRepository interface {
	GetByID(id uint) (*models.Subscription, error)
	ListByUser(userID uint) ([]models.Subscription, error)
	GetLatestByUserAndPlan(userID uint, plan string) (*models.Subscription, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
