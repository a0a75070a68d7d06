package model

import (
	"time"

	"gym-membership-subscription/internal/domain"

	"github.com/google/uuid"
)

// User is a gym member known to the subscription service. A user holds at
// most one active subscription at any instant, referenced by
// ActiveSubscriptionID; superseded subscriptions stay stored as history and
// are never deleted.
type User struct {
	ID                   string
	Email                string
	DisplayName          string
	ActiveSubscriptionID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func NewUser(id, email, displayName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" && displayName == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.UpdatedAt = time.Now() }
