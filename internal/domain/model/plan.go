package model

import (
	"time"

	"gym-membership-subscription/internal/domain"
)

// PlanPeriod is the billing period of a plan.
type PlanPeriod string

const (
	PlanPeriodPerSession PlanPeriod = "per_session"
	PlanPeriodPerMonth   PlanPeriod = "per_month"
)

// DefaultPeriodLengthDays is used for per-month plans that do not set their own length.
const DefaultPeriodLengthDays = 31

// SubscriptionPlan is a purchasable membership plan. Price is in minor
// currency units.
type SubscriptionPlan struct {
	ID               string
	Name             string
	Price            int64
	Period           PlanPeriod
	PeriodLengthDays int
	CreatedAt        time.Time
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

// Duration returns how long a subscription bought on this plan lasts.
// Per-session plans always last exactly one day.
func (p *SubscriptionPlan) Duration() time.Duration {
	if p.Period == PlanPeriodPerSession {
		return 24 * time.Hour
	}
	days := p.PeriodLengthDays
	if days <= 0 {
		days = DefaultPeriodLengthDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// NewSubscriptionPlan validates and constructs a plan.
func NewSubscriptionPlan(id, name string, price int64, period PlanPeriod, periodLengthDays int) (*SubscriptionPlan, error) {
	if id == "" || name == "" || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch period {
	case PlanPeriodPerSession, PlanPeriodPerMonth:
	default:
		return nil, domain.ErrInvalidArgument
	}
	if periodLengthDays <= 0 {
		periodLengthDays = DefaultPeriodLengthDays
	}
	return &SubscriptionPlan{
		ID:               id,
		Name:             name,
		Price:            price,
		Period:           period,
		PeriodLengthDays: periodLengthDays,
		CreatedAt:        time.Now(),
	}, nil
}
