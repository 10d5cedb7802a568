package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/funnelhub/backend/internal/billing"
	"github.com/funnelhub/backend/internal/config"
	"github.com/funnelhub/backend/internal/handler"
	"github.com/funnelhub/backend/internal/mailer"
	"github.com/funnelhub/backend/internal/middleware"
	"github.com/funnelhub/backend/internal/repository"
	"github.com/funnelhub/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	// Stripe client (optional: the API runs without billing configured)
	var stripeClient *billing.Client
	if cfg.Stripe.Configured() {
		stripeClient = billing.NewClient(cfg.Stripe.SecretKey)
	} else {
		log.Println("WARNING: Stripe is not configured, billing endpoints disabled")
	}

	// Create services
	profileSvc := service.NewProfileService(repo)
	planSvc := service.NewPlanService(repo)
	resolver := service.NewPlanResolver(repo)
	projectSvc := service.NewProjectService(repo)
	teamSvc := service.NewTeamService(repo, mailer.New(cfg.SMTP), cfg)
	feedbackSvc := service.NewFeedbackService(repo)
	affiliateSvc := service.NewAffiliateService(repo)
	ledgerSvc := service.NewLedgerService(repo)
	adminSvc := service.NewAdminService(repo)

	var stripeAPI service.StripeAPI
	if stripeClient != nil {
		stripeAPI = stripeClient
	}
	billingSvc := service.NewBillingService(repo, resolver, stripeAPI, cfg)

	// Set affiliate service on billing service (to avoid circular dependency)
	billingSvc.SetAffiliateService(affiliateSvc)

	// Set billing client on admin service so plan changes sync to Stripe
	if stripeClient != nil {
		adminSvc.SetBillingClient(stripeClient)
	}

	// Create handlers
	h := handler.New(cfg, profileSvc, planSvc, projectSvc, teamSvc, feedbackSvc, billingSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, affiliateSvc, ledgerSvc, feedbackSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))

	// Health check
	app.Get("/health", h.Health)

	// Webhooks (no auth required) - Stripe signs its own payloads
	app.Post("/webhook/stripe", h.StripeWebhook)

	// API routes with JWT authentication
	api := app.Group("/api", middleware.Auth(cfg))

	// Plans
	api.Get("/plans", h.GetPlans)

	// Profile
	api.Get("/user/me", h.GetMe)

	// Billing
	api.Post("/billing/sync", h.SyncBilling)
	api.Post("/billing/checkout", h.CreateCheckout)

	// Projects
	api.Get("/projects", h.ListProjects)
	api.Post("/projects", h.CreateProject)
	api.Get("/projects/templates", h.GetTemplates)
	api.Get("/projects/:project_id", h.GetProject)
	api.Put("/projects/:project_id", h.UpdateProject)
	api.Delete("/projects/:project_id", h.DeleteProject)
	api.Post("/projects/:project_id/duplicate", h.DuplicateProject)

	// Team
	api.Get("/projects/:project_id/team", h.ListTeamMembers)
	api.Post("/projects/:project_id/team", h.InviteTeamMember)
	api.Delete("/projects/:project_id/team/:member_id", h.RemoveTeamMember)
	api.Post("/invites/accept", h.AcceptInvite)

	// Feedback
	api.Get("/feedback", h.ListFeedback)
	api.Post("/feedback", h.CreateFeedback)
	api.Post("/feedback/:feedback_id/vote", h.VoteFeedback)

	// Admin panel routes (requires JWT auth + admin role)
	admin := app.Group("/api/admin", middleware.Auth(cfg), middleware.AdminAuth(adminSvc))
	admin.Get("/stats", adminHandler.GetStats)

	// Admin - User management
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:user_id", adminHandler.GetUser)
	admin.Post("/users/:user_id/plan", adminHandler.SetUserPlan)

	// Admin - Plans
	admin.Get("/plans", adminHandler.ListPlans)
	admin.Post("/plans", adminHandler.CreatePlan)
	admin.Put("/plans/:plan_id", adminHandler.UpdatePlan)

	// Admin - Affiliates
	admin.Get("/affiliates", adminHandler.ListAffiliates)
	admin.Post("/affiliates", adminHandler.CreateAffiliate)
	admin.Delete("/affiliates/:affiliate_id", adminHandler.DeleteAffiliate)
	admin.Get("/affiliates/:affiliate_id/ledger", adminHandler.GetAffiliateLedger)
	admin.Get("/affiliates/:affiliate_id/commissions", adminHandler.GetAffiliateCommissions)
	admin.Post("/affiliates/:affiliate_id/payouts", adminHandler.CreatePayout)

	// Admin - Feedback
	admin.Put("/feedback/:feedback_id/status", adminHandler.UpdateFeedbackStatus)

	// Admin - Audit log
	admin.Get("/actions", adminHandler.GetActions)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start subscription reconciliation worker
	if stripeClient != nil {
		reconcileWorker := service.NewReconcileWorker(billingSvc)
		go reconcileWorker.Start(ctx)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
