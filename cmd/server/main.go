package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"linkvault/internal/api"
	"linkvault/internal/api/handlers"
	"linkvault/internal/api/middleware"
	"linkvault/internal/engine/auth"
	"linkvault/internal/engine/orgs"
	"linkvault/internal/engine/rbac"
	"linkvault/internal/engine/reset"
	"linkvault/internal/engine/sso"
	"linkvault/internal/platform/audit"
	"linkvault/internal/platform/config"
	"linkvault/internal/platform/database"
	"linkvault/internal/platform/mail"
	"linkvault/internal/platform/repositories"
	"linkvault/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)

	// Platform services
	auditLog := audit.NewLogger(db)
	mailer := mail.NewMailer(cfg.Email)

	// Engines
	tokenSvc := auth.NewTokenService(cfg.JWT)
	ledger := auth.NewSessionLedger(sessionRepo, tokenSvc)
	authSvc := auth.NewService(accountRepo, ledger, tokenSvc, roleRepo, auditLog)

	rbacResolver := rbac.NewResolver(roleRepo)
	orgSvc := orgs.NewService(orgRepo, accountRepo, roleRepo, invitationRepo, rbacResolver, ledger, mailer, auditLog)

	registry := sso.NewRegistry(cfg.SSO, cfg.Server.BaseURL)
	if err := registry.Validate(); err != nil {
		log.Fatalf("Invalid SSO configuration: %v", err)
	}
	ssoResolver := sso.NewResolver(registry, accountRepo, authSvc, auditLog, cfg.SSO.Timeout)

	resetStore := reset.NewStore(redisClient, time.Hour)
	resetSvc := reset.NewService(accountRepo, resetStore, mailer, auditLog)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	ssoHandler := handlers.NewSSOHandler(ssoResolver)
	orgHandler := handlers.NewOrgHandler(orgSvc)
	roleHandler := handlers.NewRoleHandler(orgSvc)
	resetHandler := handlers.NewResetHandler(resetSvc)
	healthHandler := handlers.NewHealthHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	// Router
	router := api.NewRouter(&api.Dependencies{
		AuthHandler:    authHandler,
		SSOHandler:     ssoHandler,
		OrgHandler:     orgHandler,
		RoleHandler:    roleHandler,
		ResetHandler:   resetHandler,
		HealthHandler:  healthHandler,
		AuthMiddleware: authMiddleware,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
