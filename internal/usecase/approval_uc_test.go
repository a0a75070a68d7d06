//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/repository"
	"gym-membership-subscription/internal/usecase"
)

func pendingRequest(t *testing.T, reqs *MockRequestRepo, id, userID string, plan *model.SubscriptionPlan) *model.SubscriptionRequest {
	t.Helper()
	req, err := model.NewSubscriptionRequest(id, userID, plan, "cash", false)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if err := reqs.Save(context.Background(), repository.NoTX, req); err != nil {
		t.Fatalf("save request: %v", err)
	}
	return req
}

func TestApprovalUseCase_Approve(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	monthly := &model.SubscriptionPlan{ID: "monthly", Name: "Monthly Membership", Price: 120_000, Period: model.PlanPeriodPerMonth, PeriodLengthDays: 31}
	walkin := &model.SubscriptionPlan{ID: "walkin", Name: "Walk-in Session", Price: 15_000, Period: model.PlanPeriodPerSession}

	newUC := func(reqs *MockRequestRepo, subs *MockSubscriptionRepo, plans *MockPlanRepo, users *MockUserRepo) usecase.ApprovalUseCase {
		return usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
	}

	t.Run("creates the subscription and repoints the user", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, monthly)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		uc := newUC(reqs, subs, plans, users)
		before := time.Now()
		subID, err := uc.Approve(ctx, "req-1", "admin-7")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		sub, err := subs.FindByID(ctx, repository.NoTX, subID)
		if err != nil {
			t.Fatalf("subscription not persisted: %v", err)
		}
		if sub.Status != model.SubscriptionStatusActive {
			t.Errorf("expected active subscription, got %q", sub.Status)
		}
		if sub.StartDate.Before(before) || sub.StartDate.After(time.Now()) {
			t.Errorf("start date should be the approval instant, got %v", sub.StartDate)
		}
		wantEnd := sub.StartDate.Add(31 * 24 * time.Hour)
		if !sub.EndDate.Equal(wantEnd) {
			t.Errorf("end date = %v, want %v", sub.EndDate, wantEnd)
		}
		if sub.ApprovedBy != "admin-7" {
			t.Errorf("approved_by = %q, want admin-7", sub.ApprovedBy)
		}

		req, _ := reqs.FindByID(ctx, repository.NoTX, "req-1")
		if req.Status != model.RequestStatusApproved {
			t.Errorf("request status = %q, want approved", req.Status)
		}
		if req.SubscriptionID == nil || *req.SubscriptionID != subID {
			t.Error("request should link the created subscription")
		}

		u, _ := users.FindByID(ctx, repository.NoTX, "u1")
		if u.ActiveSubscriptionID == nil || *u.ActiveSubscriptionID != subID {
			t.Error("user pointer should reference the new subscription")
		}
	})

	t.Run("per-session plan lasts exactly one day", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, walkin)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", walkin)

		uc := newUC(reqs, subs, plans, users)
		subID, err := uc.Approve(ctx, "req-1", "admin-7")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		sub, _ := subs.FindByID(ctx, repository.NoTX, subID)
		if got, want := sub.EndDate.Sub(sub.StartDate), 24*time.Hour; got != want {
			t.Errorf("duration = %v, want %v", got, want)
		}
	})

	t.Run("a resolved request cannot be approved again", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, monthly)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		uc := newUC(reqs, subs, plans, users)
		firstSub, err := uc.Approve(ctx, "req-1", "admin-7")
		if err != nil {
			t.Fatalf("first approval failed: %v", err)
		}
		if _, err := uc.Approve(ctx, "req-1", "admin-8"); err != domain.ErrAlreadyResolved {
			t.Fatalf("expected ErrAlreadyResolved, got: %v", err)
		}
		// only the first subscription exists
		counts, _ := subs.CountByStatus(ctx, repository.NoTX)
		if counts[model.SubscriptionStatusActive] != 1 {
			t.Errorf("expected exactly one subscription, got %v", counts)
		}
		u, _ := users.FindByID(ctx, repository.NoTX, "u1")
		if u.ActiveSubscriptionID == nil || *u.ActiveSubscriptionID != firstSub {
			t.Error("user pointer should still reference the first approval's subscription")
		}
	})

	t.Run("losing the conditional write creates nothing", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, monthly)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		// The snapshot read sees a pending request, but the flip loses the race.
		reqs.MarkApprovedFunc = func(ctx context.Context, tx repository.Tx, id, subscriptionID string, at time.Time) error {
			return domain.ErrAlreadyResolved
		}

		uc := newUC(reqs, subs, plans, users)
		if _, err := uc.Approve(ctx, "req-1", "admin-7"); err != domain.ErrAlreadyResolved {
			t.Fatalf("expected ErrAlreadyResolved, got: %v", err)
		}
		counts, _ := subs.CountByStatus(ctx, repository.NoTX)
		if len(counts) != 0 {
			t.Errorf("expected no subscriptions, got %v", counts)
		}
		u, _ := users.FindByID(ctx, repository.NoTX, "u1")
		if u.ActiveSubscriptionID != nil {
			t.Error("user pointer must not move when the flip loses")
		}
	})

	t.Run("fails with ErrPlanNotFound when the plan vanished", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly) // plan not in catalog

		uc := newUC(reqs, subs, plans, users)
		if _, err := uc.Approve(ctx, "req-1", "admin-7"); err != domain.ErrPlanNotFound {
			t.Fatalf("expected ErrPlanNotFound, got: %v", err)
		}
	})

	t.Run("fails with ErrUserBusy while another approval holds the lock", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, monthly)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		locker := NewMockLocker()
		if _, err := locker.TryLock(ctx, "member:u1", time.Minute); err != nil {
			t.Fatalf("prelock: %v", err)
		}
		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), locker, newTestLogger())
		if _, err := uc.Approve(ctx, "req-1", "admin-7"); err != domain.ErrUserBusy {
			t.Fatalf("expected ErrUserBusy, got: %v", err)
		}
	})
}

func TestApprovalUseCase_Reject(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	monthly := &model.SubscriptionPlan{ID: "monthly", Name: "Monthly Membership", Price: 120_000, Period: model.PlanPeriodPerMonth, PeriodLengthDays: 31}

	t.Run("terminates a pending request and touches nothing else", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
		if err := uc.Reject(ctx, "req-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		req, _ := reqs.FindByID(ctx, repository.NoTX, "req-1")
		if req.Status != model.RequestStatusRejected {
			t.Errorf("status = %q, want rejected", req.Status)
		}
		if req.RejectedAt == nil {
			t.Error("expected a rejection timestamp")
		}
		counts, _ := subs.CountByStatus(ctx, repository.NoTX)
		if len(counts) != 0 {
			t.Errorf("rejection must not create subscriptions, got %v", counts)
		}
		u, _ := users.FindByID(ctx, repository.NoTX, "u1")
		if u.ActiveSubscriptionID != nil {
			t.Error("rejection must not move the user pointer")
		}
	})

	t.Run("rejecting a resolved request reports ErrAlreadyResolved", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = plans.Save(ctx, repository.NoTX, monthly)
		_ = users.Save(ctx, repository.NoTX, &model.User{ID: "u1"})
		pendingRequest(t, reqs, "req-1", "u1", monthly)

		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
		if _, err := uc.Approve(ctx, "req-1", "admin-7"); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if err := uc.Reject(ctx, "req-1"); err != domain.ErrAlreadyResolved {
			t.Fatalf("expected ErrAlreadyResolved, got: %v", err)
		}
	})
}

func TestApprovalUseCase_Extend(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("pushes the end date and records the grant", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		end := time.Now().Add(5 * 24 * time.Hour)
		_ = subs.Save(ctx, repository.NoTX, &model.Subscription{
			ID: "sub-1", UserID: "u1", Status: model.SubscriptionStatusActive, EndDate: end,
		})

		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
		if err := uc.Extend(ctx, "sub-1", 7, "admin-7"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		sub, _ := subs.FindByID(ctx, repository.NoTX, "sub-1")
		if want := end.Add(7 * 24 * time.Hour); !sub.EndDate.Equal(want) {
			t.Errorf("end date = %v, want %v", sub.EndDate, want)
		}
		if len(sub.Extensions) != 1 || sub.Extensions[0].AddedDays != 7 || sub.Extensions[0].ExtendedBy != "admin-7" {
			t.Errorf("extension log not recorded: %+v", sub.Extensions)
		}
	})

	t.Run("refuses to extend an expired subscription", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		_ = subs.Save(ctx, repository.NoTX, &model.Subscription{
			ID: "sub-1", UserID: "u1", Status: model.SubscriptionStatusExpired, EndDate: time.Now().Add(-time.Hour),
		})

		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
		if err := uc.Extend(ctx, "sub-1", 7, "admin-7"); err != domain.ErrExpiredSubscription {
			t.Fatalf("expected ErrExpiredSubscription, got: %v", err)
		}
	})

	t.Run("rejects non-positive day counts", func(t *testing.T) {
		users, plans, subs, reqs := NewMockUserRepo(), NewMockPlanRepo(), NewMockSubscriptionRepo(), NewMockRequestRepo()
		uc := usecase.NewApprovalUseCase(reqs, subs, plans, users, NewMockTxManager(), NewMockLocker(), testLogger)
		if err := uc.Extend(ctx, "sub-1", 0, "admin-7"); err != domain.ErrInvalidArgument {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})
}
