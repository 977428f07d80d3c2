package tiers

import (
	"github.com/versemind/VerseMind/app/models"
	"github.com/versemind/VerseMind/app/repository"
	"gorm.io/gorm"
)

// Repository provides the read-only lookups the resolver evaluates.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	GetUserSettings(userID uint) (*models.UserSettings, error)
	ListSubscriptionsByUser(userID uint) ([]models.Subscription, error)
}

type storeRepository struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
}

// NewRepository creates tier lookups over the shared GORM repositories.
func NewRepository(db *gorm.DB) Repository {
	return &storeRepository{
		users: repository.NewUserRepository(db),
		subs:  repository.NewSubscriptionRepository(db),
	}
}

// NewRepositoryFromStores wires the resolver to already-built repositories.
func NewRepositoryFromStores(users repository.UserRepository, subs repository.SubscriptionRepository) Repository {
	return &storeRepository{users: users, subs: subs}
}

func (r *storeRepository) GetUserByID(id uint) (*models.User, error) {
	return r.users.GetByID(id)
}

func (r *storeRepository) GetUserSettings(userID uint) (*models.UserSettings, error) {
	return r.users.GetSettings(userID)
}

func (r *storeRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	return r.subs.ListByUser(userID)
}
