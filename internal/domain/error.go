package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrAlreadyResolved      = errors.New("request already approved or rejected")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrNoIdentity           = errors.New("no caller identity available")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrExpiredSubscription  = errors.New("subscription has expired")
	ErrPlanInUse            = errors.New("plan has active subscriptions")
	ErrUserBusy             = errors.New("another operation for this user is in progress")

	// Store-level errors. Every operation behind these is idempotency-guarded,
	// so callers may safely retry the whole call.
	ErrOperationFailed    = errors.New("store operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
