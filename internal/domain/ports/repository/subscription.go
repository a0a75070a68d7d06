package repository

import (
	"context"
	"time"

	"gym-membership-subscription/internal/domain/model"
)

// SubscriptionRepository is the port for billed subscriptions. Rows are
// append-mostly: history is never deleted, only status flips.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)

	// ListByUser returns the user's full subscription history, oldest first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)

	// ListExpired returns active subscriptions whose end date is at or before
	// asOf. Used by the expiry worker.
	ListExpired(ctx context.Context, tx Tx, asOf time.Time) ([]*model.Subscription, error)

	// MarkExpired flips active→expired as a conditional write; a subscription
	// already expired or cancelled is left untouched and reported false.
	MarkExpired(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)

	CountActiveByPlan(ctx context.Context, tx Tx) (map[string]int, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
