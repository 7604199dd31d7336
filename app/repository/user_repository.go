package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ManuelReschke/AdEngine/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}

func (r *userRepository) SetProByStripeCustomer(ctx context.Context, customerID string, isPro bool) (bool, bool, error) {
	if strings.TrimSpace(customerID) == "" {
		return false, false, nil
	}

	matched, changed := false, false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("stripe_customer_id = ?", customerID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		matched = true
		if user.IsPro == isPro {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_pro", isPro).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return matched, changed, nil
}
