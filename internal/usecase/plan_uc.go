package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/repository"
)

// PlanUseCase manages the plan catalog.
type PlanUseCase struct {
	repo repository.SubscriptionPlanRepository
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

// NewPlanUseCase constructs a PlanUseCase.
func NewPlanUseCase(repo repository.SubscriptionPlanRepository, subs repository.SubscriptionRepository, logger *zerolog.Logger) *PlanUseCase {
	return &PlanUseCase{repo: repo, subs: subs, log: logger}
}

// Create validates and saves a new plan. Catalog plans carry stable slug ids
// ("walkin", "coaching_solo") because the transition resolver keys on them.
func (uc *PlanUseCase) Create(ctx context.Context, id, name string, price int64, period model.PlanPeriod, periodLengthDays int) (*model.SubscriptionPlan, error) {
	plan, err := model.NewSubscriptionPlan(id, name, price, period, periodLengthDays)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	uc.log.Info().Str("plan_id", plan.ID).Str("name", plan.Name).Msg("plan created")
	return plan, nil
}

// Get retrieves a plan by ID.
func (uc *PlanUseCase) Get(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	return uc.repo.FindByID(ctx, repository.NoTX, id)
}

// List returns all plans.
func (uc *PlanUseCase) List(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return uc.repo.ListAll(ctx, repository.NoTX)
}

// Update overwrites a plan's catalog entry. Existing subscriptions and
// pending requests keep their captured snapshots.
func (uc *PlanUseCase) Update(ctx context.Context, plan *model.SubscriptionPlan) error {
	if plan.IsZero() {
		return domain.ErrInvalidArgument
	}
	return uc.repo.Save(ctx, repository.NoTX, plan)
}

// Delete removes a plan from the catalog. Refused while any active
// subscription still references it; the guard is best effort, not a
// transactional constraint.
func (uc *PlanUseCase) Delete(ctx context.Context, id string) error {
	counts, err := uc.subs.CountActiveByPlan(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	if counts[id] > 0 {
		return domain.ErrPlanInUse
	}
	return uc.repo.Delete(ctx, repository.NoTX, id)
}
