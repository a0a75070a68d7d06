// File: internal/usecase/submit_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/identity"
	"gym-membership-subscription/internal/domain/ports/repository"
	"gym-membership-subscription/internal/domain/tier"
	"gym-membership-subscription/internal/infra/logging"
	"gym-membership-subscription/internal/infra/metrics"
)

// SubmitOutcome classifies what Submit did with the member's request.
type SubmitOutcome string

const (
	// SubmitOutcomeCreated: a pending request now exists.
	SubmitOutcomeCreated SubmitOutcome = "created"
	// SubmitOutcomeBlocked: the resolver forbids the transition; nothing was created.
	SubmitOutcomeBlocked SubmitOutcome = "blocked"
	// SubmitOutcomeNeedsConfirmation: the member must confirm the resolver's
	// warning and re-submit with Bypass=true; nothing was created.
	SubmitOutcomeNeedsConfirmation SubmitOutcome = "needs_confirmation"
)

// SubmitInput carries one submission. Identity, when set, is the
// caller-supplied context used to materialize an unknown user; when nil the
// session identity from the provider is used instead. The two sources are
// never merged.
type SubmitInput struct {
	UserID        string
	PlanID        string
	PaymentMethod string
	Identity      *identity.Context
	Bypass        bool
}

// SubmitResult is the typed outcome of a submission. Decision is set for
// blocked and needs-confirmation outcomes so the caller can surface the
// resolver's copy verbatim.
type SubmitResult struct {
	Outcome   SubmitOutcome
	RequestID string
	Decision  *tier.Decision
}

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

// SubmitUseCase is the member-facing entry point of the request lifecycle.
type SubmitUseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
}

type submitUC struct {
	users    repository.UserRepository
	plans    repository.SubscriptionPlanRepository
	subs     repository.SubscriptionRepository
	requests repository.SubscriptionRequestRepository
	tm       repository.TransactionManager
	session  identity.Provider
	log      *zerolog.Logger
}

func NewSubmitUseCase(
	users repository.UserRepository,
	plans repository.SubscriptionPlanRepository,
	subs repository.SubscriptionRepository,
	requests repository.SubscriptionRequestRepository,
	tm repository.TransactionManager,
	session identity.Provider,
	logger *zerolog.Logger,
) *submitUC {
	return &submitUC{
		users:    users,
		plans:    plans,
		subs:     subs,
		requests: requests,
		tm:       tm,
		session:  session,
		log:      logger,
	}
}

// Submit materializes the user if needed, consults the transition resolver
// against the user's current active subscription, and creates a pending
// request when permitted. The check and the insert run in one serializable
// transaction so a concurrent approval cannot slip between them.
func (u *submitUC) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	defer logging.TraceDuration(u.log, "SubmitUC.Submit")()

	if in.UserID == "" || in.PlanID == "" {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, in.PlanID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}

	var result *SubmitResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.ensureUser(ctx, tx, in)
		if err != nil {
			return err
		}

		if !in.Bypass {
			d, err := u.checkTransition(ctx, tx, usr, plan)
			if err != nil {
				return err
			}
			if d != nil {
				if !d.Allowed {
					result = &SubmitResult{Outcome: SubmitOutcomeBlocked, Decision: d}
					return nil
				}
				if d.RequiresConfirmation {
					result = &SubmitResult{Outcome: SubmitOutcomeNeedsConfirmation, Decision: d}
					return nil
				}
			}
		}

		req, err := model.NewSubscriptionRequest(ulid.Make().String(), in.UserID, plan, in.PaymentMethod, in.Bypass)
		if err != nil {
			return err
		}
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}
		result = &SubmitResult{Outcome: SubmitOutcomeCreated, RequestID: req.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestSubmitted(string(result.Outcome))
	u.log.Info().
		Str("user_id", in.UserID).
		Str("plan_id", in.PlanID).
		Str("outcome", string(result.Outcome)).
		Msg("submission handled")
	return result, nil
}

// ensureUser guarantees a user row exists, creating one from exactly one
// identity source: the caller-supplied context if present, otherwise the
// current session.
func (u *submitUC) ensureUser(ctx context.Context, tx repository.Tx, in SubmitInput) (*model.User, error) {
	usr, err := u.users.FindByID(ctx, tx, in.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if usr != nil {
		usr.Touch()
		return usr, u.users.Save(ctx, tx, usr)
	}

	ident := in.Identity
	if ident == nil {
		ident, err = u.session.Current(ctx)
		if err != nil {
			return nil, domain.ErrNoIdentity
		}
	}
	nu, err := model.NewUser(in.UserID, ident.Email, ident.DisplayName)
	if err != nil {
		return nil, err
	}
	return nu, u.users.Save(ctx, tx, nu)
}

// checkTransition returns the resolver decision when the user holds an
// active, unexpired subscription, nil otherwise. A dangling active pointer
// (subscription row gone) is treated as no active subscription; any other
// lookup failure aborts the submission so the veto is never skipped.
func (u *submitUC) checkTransition(ctx context.Context, tx repository.Tx, usr *model.User, next *model.SubscriptionPlan) (*tier.Decision, error) {
	if usr.ActiveSubscriptionID == nil {
		return nil, nil
	}
	cur, err := u.subs.FindByID(ctx, tx, *usr.ActiveSubscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		u.log.Warn().Err(err).Str("user_id", usr.ID).Msg("active subscription lookup failed")
		return nil, err
	}
	if !cur.IsCurrent(time.Now()) {
		return nil, nil
	}
	d := tier.Resolve(
		tier.PlanRef{ID: cur.PlanID, Name: cur.PlanName},
		tier.PlanRef{ID: next.ID, Name: next.Name},
	)
	return &d, nil
}
