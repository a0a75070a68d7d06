package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/repository"
	"gym-membership-subscription/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes member lookups used by the admin API.
type UserUseCase interface {
	Get(ctx context.Context, id string) (*model.User, error)
	// ActiveSubscription resolves the subscription referenced by the user's
	// pointer; ErrNoActiveSubscription if the pointer is unset.
	ActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	// History returns the user's full subscription history, oldest first.
	History(ctx context.Context, userID string) ([]*model.Subscription, error)
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, subs repository.SubscriptionRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, subs: subs, log: logger}
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) ActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "UserUC.ActiveSubscription")()
	usr, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if usr.ActiveSubscriptionID == nil {
		return nil, domain.ErrNoActiveSubscription
	}
	return u.subs.FindByID(ctx, repository.NoTX, *usr.ActiveSubscriptionID)
}

func (u *userUC) History(ctx context.Context, userID string) ([]*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "UserUC.History")()
	return u.subs.ListByUser(ctx, repository.NoTX, userID)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}
