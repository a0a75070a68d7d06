// File: internal/usecase/approval_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/repository"
	"gym-membership-subscription/internal/infra/logging"
	"gym-membership-subscription/internal/infra/metrics"
)

// Locker serializes operations per user. Concurrent approvals for the same
// user would otherwise race on the active-subscription pointer.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

const userLockTTL = 10 * time.Second

// Compile-time check
var _ ApprovalUseCase = (*approvalUC)(nil)

// ApprovalUseCase is the admin side of the request lifecycle: it turns a
// pending request into a billed, dated subscription, or terminates it.
type ApprovalUseCase interface {
	// Approve resolves a pending request into an active subscription and
	// returns the new subscription id. Effects-idempotent: re-approving the
	// same request reports ErrAlreadyResolved and creates nothing.
	Approve(ctx context.Context, requestID, adminID string) (string, error)
	// Reject terminates a pending request. Touches no subscription or user.
	Reject(ctx context.Context, requestID string) error
	// Extend grants extra days on an active subscription and records the
	// grant in the extension log.
	Extend(ctx context.Context, subscriptionID string, days int, adminID string) error
	// Pending returns the review queue in submission order.
	Pending(ctx context.Context, limit int) ([]*model.SubscriptionRequest, error)
}

type approvalUC struct {
	requests repository.SubscriptionRequestRepository
	subs     repository.SubscriptionRepository
	plans    repository.SubscriptionPlanRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	locker   Locker
	log      *zerolog.Logger
}

func NewApprovalUseCase(
	requests repository.SubscriptionRequestRepository,
	subs repository.SubscriptionRepository,
	plans repository.SubscriptionPlanRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	locker Locker,
	logger *zerolog.Logger,
) *approvalUC {
	return &approvalUC{
		requests: requests,
		subs:     subs,
		plans:    plans,
		users:    users,
		tm:       tm,
		locker:   locker,
		log:      logger,
	}
}

func (u *approvalUC) Approve(ctx context.Context, requestID, adminID string) (string, error) {
	defer logging.TraceDuration(u.log, "ApprovalUC.Approve")()

	if requestID == "" {
		return "", domain.ErrInvalidArgument
	}
	req, err := u.requests.FindByID(ctx, repository.NoTX, requestID)
	if err != nil {
		return "", err
	}
	// Fast-path guard; the authoritative one is the conditional write below.
	if req.IsResolved() {
		return "", domain.ErrAlreadyResolved
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, req.PlanID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrPlanNotFound
		}
		return "", err
	}

	// Serialize approvals per user: the active-subscription pointer is the
	// one genuinely shared mutable field.
	token, err := u.locker.TryLock(ctx, "member:"+req.UserID, userLockTTL)
	if err != nil {
		return "", domain.ErrUserBusy
	}
	defer func() { _ = u.locker.Unlock(ctx, "member:"+req.UserID, token) }()

	subID := uuid.NewString()
	now := time.Now()
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Conditional flip first: if the request is no longer pending the
		// whole transaction aborts before anything is created.
		if err := u.requests.MarkApproved(ctx, tx, req.ID, subID, now); err != nil {
			return err
		}
		sub, err := model.NewSubscription(subID, req, plan, adminID, now)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		return u.users.SetActiveSubscription(ctx, tx, req.UserID, &subID)
	})
	if err != nil {
		return "", err
	}

	metrics.IncRequestResolved("approved")
	u.log.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Str("subscription_id", subID).
		Str("approved_by", adminID).
		Msg("request approved")
	return subID, nil
}

func (u *approvalUC) Reject(ctx context.Context, requestID string) error {
	defer logging.TraceDuration(u.log, "ApprovalUC.Reject")()

	if requestID == "" {
		return domain.ErrInvalidArgument
	}
	req, err := u.requests.FindByID(ctx, repository.NoTX, requestID)
	if err != nil {
		return err
	}
	if req.IsResolved() {
		return domain.ErrAlreadyResolved
	}
	// Single conditional statement; no multi-record unit of work needed.
	if err := u.requests.MarkRejected(ctx, repository.NoTX, req.ID, time.Now()); err != nil {
		return err
	}

	metrics.IncRequestResolved("rejected")
	u.log.Info().Str("request_id", req.ID).Str("user_id", req.UserID).Msg("request rejected")
	return nil
}

func (u *approvalUC) Pending(ctx context.Context, limit int) ([]*model.SubscriptionRequest, error) {
	defer logging.TraceDuration(u.log, "ApprovalUC.Pending")()
	return u.requests.ListByStatus(ctx, repository.NoTX, model.RequestStatusPending, limit)
}

func (u *approvalUC) Extend(ctx context.Context, subscriptionID string, days int, adminID string) error {
	defer logging.TraceDuration(u.log, "ApprovalUC.Extend")()

	if subscriptionID == "" || days <= 0 {
		return domain.ErrInvalidArgument
	}
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		if err := sub.Extend(days, adminID, time.Now()); err != nil {
			return err
		}
		return u.subs.Save(ctx, tx, sub)
	})
}
