// File: internal/usecase/expiry_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain/ports/repository"
	"gym-membership-subscription/internal/infra/logging"
	"gym-membership-subscription/internal/infra/metrics"
)

// Compile-time check
var _ ExpiryUseCase = (*expiryUC)(nil)

// ExpiryUseCase flips subscriptions past their end date to expired and clears
// the owner's active pointer. Driven by the scheduler.
type ExpiryUseCase interface {
	// FinishExpired returns the number of subscriptions it expired.
	FinishExpired(ctx context.Context) (int, error)
}

type expiryUC struct {
	subs  repository.SubscriptionRepository
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewExpiryUseCase(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *expiryUC {
	return &expiryUC{subs: subs, users: users, tm: tm, log: logger}
}

func (u *expiryUC) FinishExpired(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "ExpiryUC.FinishExpired")()

	now := time.Now()
	due, err := u.subs.ListExpired(ctx, repository.NoTX, now)
	if err != nil {
		return 0, err
	}

	finished := 0
	for _, sub := range due {
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			// Conditional flip; a subscription resolved by a racing worker or
			// an admin cancel in the meantime counts as someone else's win.
			flipped, err := u.subs.MarkExpired(ctx, tx, sub.ID, now)
			if err != nil || !flipped {
				return err
			}
			usr, err := u.users.FindByID(ctx, tx, sub.UserID)
			if err != nil {
				return err
			}
			// Clear the pointer only if it still references this subscription.
			if usr.ActiveSubscriptionID != nil && *usr.ActiveSubscriptionID == sub.ID {
				if err := u.users.SetActiveSubscription(ctx, tx, usr.ID, nil); err != nil {
					return err
				}
			}
			finished++
			return nil
		})
		if err != nil {
			u.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("expiry failed")
		}
	}

	if counts, err := u.subs.CountByStatus(ctx, repository.NoTX); err == nil {
		metrics.SetSubscriptionsTotal(counts)
	}
	return finished, nil
}
