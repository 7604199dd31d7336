package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	Password         string    `gorm:"column:hashed_password;type:text;not null" json:"-" validate:"required"`
	Name             *string   `gorm:"type:varchar(150);default:null" json:"name" validate:"omitempty,max=150"`
	StripeCustomerID *string   `gorm:"type:varchar(191);uniqueIndex;default:null" json:"-"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	IsPro            bool      `gorm:"default:false;index" json:"is_pro"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds an active standard-tier user with a hashed password.
// The returned user is not persisted.
func CreateUser(email, password, name string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: pw,
		IsActive: true,
		IsPro:    false,
	}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = &n
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// HasBillingCustomer reports whether a Stripe customer is linked to the user.
func (u *User) HasBillingCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}

// DisplayName returns the optional name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
