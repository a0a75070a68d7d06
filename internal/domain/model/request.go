package model

import (
	"time"

	"gym-membership-subscription/internal/domain"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// SubscriptionRequest is a member's intent to purchase a plan, awaiting an
// admin decision. Its status transitions exactly once, pending→approved or
// pending→rejected, and never changes again. Plan name and price are
// snapshots taken at submission time.
type SubscriptionRequest struct {
	ID             string // ULID, time-ordered for the review queue
	UserID         string
	PlanID         string
	PlanName       string
	Price          int64
	Status         RequestStatus
	PaymentMethod  string
	Bypass         bool // the member confirmed a resolver warning
	RequestDate    time.Time
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	SubscriptionID *string // set only once approved
}

// NewSubscriptionRequest validates and constructs a pending request,
// capturing the plan snapshot.
func NewSubscriptionRequest(id, userID string, plan *SubscriptionPlan, paymentMethod string, bypass bool) (*SubscriptionRequest, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &SubscriptionRequest{
		ID:            id,
		UserID:        userID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Price:         plan.Price,
		Status:        RequestStatusPending,
		PaymentMethod: paymentMethod,
		Bypass:        bypass,
		RequestDate:   time.Now(),
	}, nil
}

func (r *SubscriptionRequest) IsResolved() bool {
	return r != nil && r.Status != RequestStatusPending
}
