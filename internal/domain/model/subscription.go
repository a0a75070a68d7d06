package model

import (
	"time"

	"gym-membership-subscription/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Extension records a manual end-date extension granted by an admin.
type Extension struct {
	ExtendedAt time.Time `json:"extended_at"`
	AddedDays  int       `json:"added_days"`
	ExtendedBy string    `json:"extended_by"`
}

// Subscription is a billed, dated membership created when an admin approves
// a request. PlanName and Price are snapshots captured at submission time;
// later catalog edits never alter an existing subscription.
type Subscription struct {
	ID         string
	UserID     string
	PlanID     string
	PlanName   string
	Price      int64
	Status     SubscriptionStatus
	StartDate  time.Time
	EndDate    time.Time
	ApprovedAt time.Time
	ApprovedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Extensions []Extension
}

// NewSubscription builds an active subscription starting at the approval
// instant. Name and price come from the request snapshot; the billing period
// comes from the live plan (which must still exist for approval to proceed).
func NewSubscription(id string, req *SubscriptionRequest, plan *SubscriptionPlan, approvedBy string, now time.Time) (*Subscription, error) {
	if id == "" || req == nil || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:         id,
		UserID:     req.UserID,
		PlanID:     req.PlanID,
		PlanName:   req.PlanName,
		Price:      req.Price,
		Status:     SubscriptionStatusActive,
		StartDate:  now,
		EndDate:    now.Add(plan.Duration()),
		ApprovedAt: now,
		ApprovedBy: approvedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsCurrent reports whether the subscription is active and not yet past its
// end date at the given instant.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && s.EndDate.After(now)
}

// Extend pushes the end date by the given number of days and records the
// grant in the extension log. Only active subscriptions can be extended.
func (s *Subscription) Extend(days int, extendedBy string, now time.Time) error {
	if days <= 0 {
		return domain.ErrInvalidArgument
	}
	if s.Status != SubscriptionStatusActive {
		return domain.ErrExpiredSubscription
	}
	s.EndDate = s.EndDate.Add(time.Duration(days) * 24 * time.Hour)
	s.Extensions = append(s.Extensions, Extension{
		ExtendedAt: now,
		AddedDays:  days,
		ExtendedBy: extendedBy,
	})
	s.UpdatedAt = now
	return nil
}
