package repository

import (
	"context"

	"gym-membership-subscription/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)

	// SetActiveSubscription overwrites the user's active-subscription pointer.
	// Passing nil clears it.
	SetActiveSubscription(ctx context.Context, tx Tx, userID string, subscriptionID *string) error

	CountUsers(ctx context.Context, tx Tx) (int, error)
}
