//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/identity"
	"gym-membership-subscription/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.User

	SaveFunc                  func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc              func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	SetActiveSubscriptionFunc func(ctx context.Context, tx repository.Tx, userID string, subscriptionID *string) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MockUserRepo) SetActiveSubscription(ctx context.Context, tx repository.Tx, userID string, subscriptionID *string) error {
	if r.SetActiveSubscriptionFunc != nil {
		return r.SetActiveSubscriptionFunc(ctx, tx, userID, subscriptionID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.ActiveSubscriptionID = subscriptionID
	return nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

// ---- Mock SubscriptionPlanRepository ----

type MockPlanRepo struct {
	mu    sync.RWMutex
	plans map[string]*model.SubscriptionPlan

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error)
}

var _ repository.SubscriptionPlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{plans: map[string]*model.SubscriptionPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[cp.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.SubscriptionPlan, 0, len(r.plans))
	for _, p := range r.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.RWMutex
	subs map[string]*model.Subscription

	SaveFunc        func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	MarkExpiredFunc func(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.subs[cp.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) ListExpired(ctx context.Context, tx repository.Tx, asOf time.Time) ([]*model.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range r.subs {
		if s.Status == model.SubscriptionStatusActive && !s.EndDate.After(asOf) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) MarkExpired(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	if r.MarkExpiredFunc != nil {
		return r.MarkExpiredFunc(ctx, tx, id, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || s.Status != model.SubscriptionStatusActive {
		return false, nil
	}
	s.Status = model.SubscriptionStatusExpired
	s.UpdatedAt = at
	return true, nil
}

func (r *MockSubscriptionRepo) CountActiveByPlan(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, s := range r.subs {
		if s.Status == model.SubscriptionStatusActive {
			out[s.PlanID]++
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.SubscriptionStatus]int)
	for _, s := range r.subs {
		out[s.Status]++
	}
	return out, nil
}

// ---- Mock SubscriptionRequestRepository ----

type MockRequestRepo struct {
	mu   sync.RWMutex
	reqs map[string]*model.SubscriptionRequest

	SaveFunc         func(ctx context.Context, tx repository.Tx, req *model.SubscriptionRequest) error
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionRequest, error)
	MarkApprovedFunc func(ctx context.Context, tx repository.Tx, id, subscriptionID string, at time.Time) error
}

var _ repository.SubscriptionRequestRepository = (*MockRequestRepo)(nil)

func NewMockRequestRepo() *MockRequestRepo {
	return &MockRequestRepo{reqs: map[string]*model.SubscriptionRequest{}}
}

func (r *MockRequestRepo) Save(ctx context.Context, tx repository.Tx, req *model.SubscriptionRequest) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, req)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.reqs[cp.ID] = &cp
	return nil
}

func (r *MockRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionRequest, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *MockRequestRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.RequestStatus, limit int) ([]*model.SubscriptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.SubscriptionRequest
	for _, req := range r.reqs {
		if req.Status == status {
			cp := *req
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// MarkApproved mirrors the conditional write: the flip only lands while the
// request is still pending.
func (r *MockRequestRepo) MarkApproved(ctx context.Context, tx repository.Tx, id, subscriptionID string, at time.Time) error {
	if r.MarkApprovedFunc != nil {
		return r.MarkApprovedFunc(ctx, tx, id, subscriptionID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return domain.ErrOperationFailed
	}
	if req.Status != model.RequestStatusPending {
		return domain.ErrAlreadyResolved
	}
	req.Status = model.RequestStatusApproved
	t := at
	req.ApprovedAt = &t
	sid := subscriptionID
	req.SubscriptionID = &sid
	return nil
}

func (r *MockRequestRepo) MarkRejected(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return domain.ErrOperationFailed
	}
	if req.Status != model.RequestStatusPending {
		return domain.ErrAlreadyResolved
	}
	req.Status = model.RequestStatusRejected
	t := at
	req.RejectedAt = &t
	return nil
}

func (r *MockRequestRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.RequestStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.RequestStatus]int)
	for _, req := range r.reqs {
		out[req.Status]++
	}
	return out, nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately with NoTX unless a custom WithTxFunc
// is installed.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", errors.New("locked")
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// ---- Mock identity provider ----

type MockIdentityProvider struct {
	Ctx *identity.Context
	Err error
}

var _ identity.Provider = (*MockIdentityProvider)(nil)

func (p *MockIdentityProvider) Current(ctx context.Context) (*identity.Context, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Ctx == nil {
		return nil, domain.ErrNoIdentity
	}
	return p.Ctx, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
