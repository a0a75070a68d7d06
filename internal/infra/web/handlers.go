package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/identity"
	"gym-membership-subscription/internal/domain/tier"
	"gym-membership-subscription/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoIdentity):
		http.Error(w, "Identity required", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrPlanNotFound), errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyResolved):
		http.Error(w, "Request already resolved", http.StatusConflict)
	case errors.Is(err, domain.ErrUserBusy):
		http.Error(w, "User is busy, retry shortly", http.StatusConflict)
	case errors.Is(err, domain.ErrPlanInUse):
		http.Error(w, "Plan has active subscriptions", http.StatusConflict)
	case errors.Is(err, domain.ErrNoActiveSubscription):
		http.Error(w, "No active subscription", http.StatusNotFound)
	case errors.Is(err, domain.ErrExpiredSubscription):
		http.Error(w, "Subscription is not active", http.StatusConflict)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// ===== Requests =====

type submitRequest struct {
	UserID        string `json:"user_id,omitempty"`
	PlanID        string `json:"plan_id"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Bypass        bool   `json:"bypass,omitempty"`
	Identity      *struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	} `json:"identity,omitempty"`
}

type decisionResponse struct {
	Title                string `json:"title"`
	Message              string `json:"message"`
	Allowed              bool   `json:"allowed"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

type submitResponse struct {
	Outcome   string            `json:"outcome"`
	RequestID string            `json:"request_id,omitempty"`
	Decision  *decisionResponse `json:"decision,omitempty"`
}

func toDecisionResponse(d *tier.Decision) *decisionResponse {
	if d == nil {
		return nil
	}
	return &decisionResponse{
		Title:                d.Title,
		Message:              d.Message,
		Allowed:              d.Allowed,
		RequiresConfirmation: d.RequiresConfirmation,
	}
}

func (s *Server) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		claims, _ := claimsFrom(ctx)
		in := usecase.SubmitInput{
			UserID:        req.UserID,
			PlanID:        req.PlanID,
			PaymentMethod: req.PaymentMethod,
			Bypass:        req.Bypass,
		}
		// Members submit for themselves; only admins may name another user.
		if claims.Role != RoleAdmin || in.UserID == "" {
			in.UserID = claims.Subject
		}
		if req.Identity != nil {
			if claims.Role != RoleAdmin {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			in.Identity = &identity.Context{
				UserID:      in.UserID,
				Email:       req.Identity.Email,
				DisplayName: req.Identity.DisplayName,
			}
		}

		result, err := s.submitUC.Submit(ctx, in)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := submitResponse{
			Outcome:   string(result.Outcome),
			RequestID: result.RequestID,
			Decision:  toDecisionResponse(result.Decision),
		}
		status := http.StatusOK
		if result.Outcome == usecase.SubmitOutcomeCreated {
			status = http.StatusCreated
		}
		writeJSON(w, status, resp)
	}
}

func (s *Server) requestsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		// Only the pending queue is served; resolved requests are reached
		// through the user's history.
		if st := r.URL.Query().Get("status"); st != "" && st != string(model.RequestStatusPending) {
			http.Error(w, "Unsupported status filter", http.StatusBadRequest)
			return
		}

		requests, err := s.approvalUC.Pending(ctx, limit)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			Data []*model.SubscriptionRequest `json:"data"`
		}{Data: requests}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) approveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, _ := claimsFrom(ctx)

		subID, err := s.approvalUC.Approve(ctx, chi.URLParam(r, "id"), claims.Subject)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			SubscriptionID string `json:"subscription_id"`
		}{SubscriptionID: subID}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) rejectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.approvalUC.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type extendRequest struct {
	Days int `json:"days"`
}

func (s *Server) extendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, _ := claimsFrom(ctx)

		var req extendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.approvalUC.Extend(ctx, chi.URLParam(r, "id"), req.Days, claims.Subject); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== Users =====

func (s *Server) userGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		user, err := s.userUC.Get(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		history, err := s.userUC.History(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}

		response := struct {
			User          *model.User           `json:"user"`
			Subscriptions []*model.Subscription `json:"subscriptions"`
		}{
			User:          user,
			Subscriptions: history,
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) userSubscriptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := s.userUC.ActiveSubscription(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// ===== Plans =====

type planPayload struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Price            int64  `json:"price"`
	Period           string `json:"period"`
	PeriodLengthDays int    `json:"period_length_days,omitempty"`
}

func (s *Server) plansCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		plan, err := s.planUC.Create(r.Context(), req.ID, req.Name, req.Price, model.PlanPeriod(req.Period), req.PeriodLengthDays)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

func (s *Server) plansListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.planUC.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		response := struct {
			Data []*model.SubscriptionPlan `json:"data"`
		}{Data: plans}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) plansUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		var req planPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		plan, err := s.planUC.Get(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		plan.Name = req.Name
		plan.Price = req.Price
		plan.Period = model.PlanPeriod(req.Period)
		if req.PeriodLengthDays > 0 {
			plan.PeriodLengthDays = req.PeriodLengthDays
		}
		if err := s.planUC.Update(ctx, plan); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

func (s *Server) plansDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
