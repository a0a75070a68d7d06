package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gym-membership-subscription/internal/infra/logging"
	"gym-membership-subscription/internal/infra/metrics"
	"gym-membership-subscription/internal/usecase"
)

type Server struct {
	submitUC   usecase.SubmitUseCase
	approvalUC usecase.ApprovalUseCase
	userUC     usecase.UserUseCase
	planUC     *usecase.PlanUseCase
	auth       *AuthManager
	log        *zerolog.Logger
}

func NewServer(
	submitUC usecase.SubmitUseCase,
	approvalUC usecase.ApprovalUseCase,
	userUC usecase.UserUseCase,
	planUC *usecase.PlanUseCase,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		submitUC:   submitUC,
		approvalUC: approvalUC,
		userUC:     userUC,
		planUC:     planUC,
		auth:       auth,
		log:        logger,
	}
}

// Router builds the HTTP surface. Members submit requests; every other
// mutation is admin-only.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metrics.MustRegister()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RoleMember, RoleAdmin))
			r.Post("/requests", s.submitHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RoleAdmin))

			r.Get("/requests", s.requestsListHandler())
			r.Post("/requests/{id}/approve", s.approveHandler())
			r.Post("/requests/{id}/reject", s.rejectHandler())
			r.Post("/subscriptions/{id}/extend", s.extendHandler())

			r.Get("/users/{id}", s.userGetHandler())
			r.Get("/users/{id}/subscription", s.userSubscriptionHandler())

			r.Get("/plans", s.plansListHandler())
			r.Post("/plans", s.plansCreateHandler())
			r.Put("/plans/{id}", s.plansUpdateHandler())
			r.Delete("/plans/{id}", s.plansDeleteHandler())
		})
	})
	return r
}

// logRequests emits one debug line per request, tagged with the chi request id.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("http request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole verifies the bearer token and stores its claims on the request
// context for the session identity provider.
func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.auth.ParseFromRequest(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			ctx := withClaims(r.Context(), claims)
			ctx = logging.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
