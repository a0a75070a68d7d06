// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gym-membership-subscription/internal/config"
	"gym-membership-subscription/internal/domain/model"
	pg "gym-membership-subscription/internal/infra/db/postgres"
	"gym-membership-subscription/internal/infra/logging"
	"gym-membership-subscription/internal/infra/web"
	"gym-membership-subscription/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, subRepo, logger)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s, period=%s, price=%d)\n", p.ID, p.Name, p.Period, p.Price)
		}
		return
	}

	// The gym catalog. Both coaching tracks share a display name, so their
	// ids are what tells group and solo apart.
	seed := []struct {
		ID     string
		Name   string
		Price  int64
		Period model.PlanPeriod
		Days   int
	}{
		{"walkin", "Walk-in Session", 15_000, model.PlanPeriodPerSession, 0},
		{"monthly", "Monthly Membership", 120_000, model.PlanPeriodPerMonth, 31},
		{"coaching_group", "Coaching Program", 250_000, model.PlanPeriodPerMonth, 31},
		{"coaching_solo", "Coaching Program", 400_000, model.PlanPeriodPerMonth, 31},
	}

	for _, s := range seed {
		p, err := planUC.Create(ctx, s.ID, s.Name, s.Price, s.Period, s.Days)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.ID, err)
		}
		fmt.Printf("seeded: %s (%s, period=%s, price=%d)\n", p.ID, p.Name, p.Period, p.Price)
	}

	fmt.Println("Seeding complete.")

	// Mint a short-lived admin token so the catalog can be driven right away.
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, time.Hour)
	if tok, err := auth.Mint("admin-seed", web.RoleAdmin, "", ""); err == nil {
		fmt.Printf("admin token (1h): %s\n", tok)
	}
}
