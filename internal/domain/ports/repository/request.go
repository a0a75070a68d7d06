package repository

import (
	"context"
	"time"

	"gym-membership-subscription/internal/domain/model"
)

// SubscriptionRequestRepository is the port for pending membership requests.
//
// MarkApproved and MarkRejected are conditional writes: the status flip only
// happens if the row is still pending at write time. A request that lost the
// race reports domain.ErrAlreadyResolved, never a partial update. This is
// what makes concurrent admin decisions safe.
type SubscriptionRequestRepository interface {
	Save(ctx context.Context, tx Tx, r *model.SubscriptionRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SubscriptionRequest, error)
	ListByStatus(ctx context.Context, tx Tx, status model.RequestStatus, limit int) ([]*model.SubscriptionRequest, error)

	MarkApproved(ctx context.Context, tx Tx, id, subscriptionID string, at time.Time) error
	MarkRejected(ctx context.Context, tx Tx, id string, at time.Time) error

	CountByStatus(ctx context.Context, tx Tx) (map[model.RequestStatus]int, error)
}
