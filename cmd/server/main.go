package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/featureflags"
	"github.com/yourorg/internhub/internal/handler"
	"github.com/yourorg/internhub/internal/infrastructure/blob"
	"github.com/yourorg/internhub/internal/infrastructure/logger"
	"github.com/yourorg/internhub/internal/infrastructure/redis"
	"github.com/yourorg/internhub/internal/observability/metrics"
	"github.com/yourorg/internhub/internal/observability/tracing"
	"github.com/yourorg/internhub/internal/realtime"
	"github.com/yourorg/internhub/internal/repository"
	"github.com/yourorg/internhub/internal/security"
	"github.com/yourorg/internhub/internal/security/audit"
	"github.com/yourorg/internhub/internal/security/auth"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/security/ratelimit"
	"github.com/yourorg/internhub/internal/service"
	"github.com/yourorg/internhub/internal/worker"
	"github.com/yourorg/internhub/pkg/cache"
	"github.com/yourorg/internhub/pkg/config"
	"github.com/yourorg/internhub/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting InternHub server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "internhub", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect storage and apply migrations
	pool, err := database.NewConnectionPool(ctx,
		database.FromAppConfig(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode),
		log,
	)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		log.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db := pool.GetDB()

	// 5. Connect Redis
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Blob store for resumes
	blobStore, err := blob.NewStore(cfg.ResumeDir, cfg.PublicBaseURL, log)
	if err != nil {
		log.Error("failed to initialize blob store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	roleRepo := repository.NewPostgresRoleRepository(db, log)
	orgRepo := repository.NewPostgresOrganizationRepository(db, log)
	internRepo := repository.NewPostgresInternRepository(db, log)
	internshipRepo := repository.NewPostgresInternshipRepository(db, log)
	applicationRepo := repository.NewPostgresApplicationRepository(db, log)
	conversationRepo := repository.NewPostgresConversationRepository(db, log)
	messageRepo := repository.NewPostgresMessageRepository(db, log)

	// 8. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "internhub")
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)

	// 9. Realtime fan-out. Local hub always runs; the Redis bridge is behind
	// a flag so single-instance deployments skip the extra hop.
	hub := realtime.NewHub(log)
	var fanout *realtime.Fanout
	if featureflags.Enabled("REALTIME_FANOUT") {
		fanout = realtime.NewFanout(hub, redisClient, uuid.NewString(), log)
		go func() {
			if err := fanout.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("realtime fanout exited", slog.String("error", err.Error()))
			}
		}()
	}

	// 10. Services. The browse cache is shared: internship mutations and
	// approval decisions both invalidate it.
	browseCache := cache.New()
	authService := service.NewAuthService(userRepo, roleRepo, tokenManager, cfg.RequireEmailConfirmation, cfg.AdminEmails, log)
	profileService := service.NewProfileService(orgRepo, internRepo, log)
	approvalService := service.NewApprovalService(orgRepo, auditLogger, browseCache, log)
	internshipService := service.NewInternshipService(internshipRepo, orgRepo, browseCache, cfg.BrowseCacheTTL, log)
	applicationService := service.NewApplicationService(applicationRepo, internshipRepo, orgRepo, internRepo, cfg.StrictTransitions, auditLogger, log)
	messagingService := service.NewMessagingService(conversationRepo, messageRepo, userRepo, hub, fanout, log)

	// 11. Handlers
	authHandler := handler.NewAuthHandler(authService, profileService, log)
	organizationHandler := handler.NewOrganizationHandler(profileService, log)
	internHandler := handler.NewInternHandler(profileService, log)
	resumeHandler := handler.NewResumeHandler(blobStore, profileService, cfg.ResumeMaxBytes, log)
	internshipHandler := handler.NewInternshipHandler(internshipService, log)
	applicationHandler := handler.NewApplicationHandler(applicationService, log)
	adminHandler := handler.NewAdminHandler(approvalService, authService, authz, log)
	messagingHandler := handler.NewMessagingHandler(messagingService, log)
	chatFeedHandler := handler.NewChatFeedHandler(messagingService, log, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 12. Routes. Role guards wrap each protected route; required role empty
	// means any onboarded user.
	guardAdmin := middleware.RequireRole(roleRepo, log, domain.RoleAdmin)
	guardOrg := middleware.RequireRole(roleRepo, log, domain.RoleOrganization)
	guardIntern := middleware.RequireRole(roleRepo, log, domain.RoleIntern)
	guardAny := middleware.RequireRole(roleRepo, log, "")

	mux := http.NewServeMux()

	// Session surface; reachable with a token but before role selection
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/role", authHandler.SelectRole)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("POST /api/auth/confirm-email", authHandler.ConfirmEmail)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("DELETE /api/auth/account", authHandler.DeleteAccount)

	// Admin surface
	mux.Handle("GET /api/admin/organizations", guardAdmin(http.HandlerFunc(adminHandler.ListOrganizations)))
	mux.Handle("POST /api/admin/organizations/{id}/approval", guardAdmin(http.HandlerFunc(adminHandler.Decide)))
	mux.Handle("GET /api/admin/users", guardAdmin(http.HandlerFunc(adminHandler.ListUsers)))

	// Organization surface
	mux.Handle("POST /api/organization/profile", guardOrg(http.HandlerFunc(organizationHandler.CreateProfile)))
	mux.Handle("GET /api/organization/profile", guardOrg(http.HandlerFunc(organizationHandler.GetProfile)))
	mux.Handle("PUT /api/organization/profile", guardOrg(http.HandlerFunc(organizationHandler.UpdateProfile)))
	mux.Handle("POST /api/internships", guardOrg(http.HandlerFunc(internshipHandler.Create)))
	mux.Handle("GET /api/internships", guardOrg(http.HandlerFunc(internshipHandler.ListMine)))
	mux.Handle("PUT /api/internships/{id}", guardOrg(http.HandlerFunc(internshipHandler.Update)))
	mux.Handle("PATCH /api/internships/{id}/status", guardOrg(http.HandlerFunc(internshipHandler.SetStatus)))
	mux.Handle("DELETE /api/internships/{id}", guardOrg(http.HandlerFunc(internshipHandler.Delete)))
	mux.Handle("GET /api/organization/applications", guardOrg(http.HandlerFunc(applicationHandler.ListReceived)))
	mux.Handle("GET /api/organization/applications/stats", guardOrg(http.HandlerFunc(applicationHandler.Stats)))
	mux.Handle("PATCH /api/applications/{id}/status", guardOrg(http.HandlerFunc(applicationHandler.UpdateStatus)))

	// Applicant surface
	mux.Handle("POST /api/intern/profile", guardIntern(http.HandlerFunc(internHandler.CreateProfile)))
	mux.Handle("GET /api/intern/profile", guardIntern(http.HandlerFunc(internHandler.GetProfile)))
	mux.Handle("PUT /api/intern/profile", guardIntern(http.HandlerFunc(internHandler.UpdateProfile)))
	mux.Handle("POST /api/intern/resume", guardIntern(http.HandlerFunc(resumeHandler.Upload)))
	mux.Handle("GET /api/browse/internships", guardIntern(http.HandlerFunc(internshipHandler.Browse)))
	mux.Handle("POST /api/applications", guardIntern(http.HandlerFunc(applicationHandler.Apply)))
	mux.Handle("GET /api/applications", guardIntern(http.HandlerFunc(applicationHandler.ListMine)))
	mux.Handle("POST /api/applications/{id}/withdraw", guardIntern(http.HandlerFunc(applicationHandler.Withdraw)))

	// Shared surface
	mux.Handle("GET /api/internships/{id}", guardAny(http.HandlerFunc(internshipHandler.Get)))
	mux.Handle("POST /api/conversations", guardAny(http.HandlerFunc(messagingHandler.Open)))
	mux.Handle("GET /api/conversations", guardAny(http.HandlerFunc(messagingHandler.List)))
	mux.Handle("GET /api/conversations/{id}/messages", guardAny(http.HandlerFunc(messagingHandler.ListMessages)))
	mux.Handle("POST /api/conversations/{id}/messages", guardAny(http.HandlerFunc(messagingHandler.Send)))
	mux.Handle("POST /api/conversations/{id}/read", guardAny(http.HandlerFunc(messagingHandler.MarkRead)))
	mux.Handle("GET /ws/conversations/{id}", guardAny(chatFeedHandler))

	// Public surface
	mux.HandleFunc("GET /files/resumes/{key}", resumeHandler.Serve)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> sanitize -> content type ->
	// audit -> rate limit -> JWT -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.SanitizePaths(log)(
				middleware.ValidateJSONContentType(log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.JWTMiddleware(tokenManager, log)(handlerWithCORS),
						),
					),
				),
			),
		),
		log,
	)

	// 13. Deadline worker
	deadlineWorker := worker.NewDeadlineWorker(internshipRepo, log, cfg.DeadlineInterval)
	go deadlineWorker.Start(ctx)

	// 14. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("strict_transitions", cfg.StrictTransitions),
		slog.Bool("realtime_fanout", fanout != nil),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop worker and fanout
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
