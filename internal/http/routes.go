package http

import (
	"os"
	"strconv"
	"time"

	"earnhub/internal/config"
	"earnhub/internal/http/handlers"
	"earnhub/internal/http/middleware"
	"earnhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, h *handlers.Handler, hub *ws.Hub, version string) {
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Money-moving endpoints get a tighter per-user limit.
	actionRateLimit := 10
	actionRateWindow := time.Minute

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Metrics())
	api.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	api.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

	authed := api.Group("")
	authed.Use(middleware.JWT(), middleware.LoadUser(h.Users))

	// Profile
	authed.GET("/me", h.Me)
	authed.GET("/me/transactions", h.MyTransactions)
	authed.GET("/me/channels", h.MyChannels)

	// Task catalog and submissions
	authed.GET("/tasks", h.ListTasks)
	authed.GET("/tasks/:id", h.GetTask)
	authed.GET("/me/tasks", h.MySubmissions)

	// Referral system
	authed.GET("/referral/stats", h.ReferralStats)
	authed.GET("/referral/link", h.ReferralLink)

	// Withdrawal history and fee preview stay readable even while the
	// channel gate is closed.
	authed.GET("/withdrawals", h.MyWithdrawals)
	authed.POST("/withdrawals/estimate", h.WithdrawalEstimate)

	// Everything that moves money requires the channel subscriptions
	// and is throttled per user.
	gated := authed.Group("")
	gated.Use(middleware.ChannelGate(h.Gate))
	gated.Use(middleware.UserRateLimit(actionRateLimit, actionRateWindow))

	gated.POST("/tasks/:id/start", h.StartTask)
	gated.POST("/tasks/:id/submit", h.SubmitTask)
	gated.POST("/withdrawals", h.RequestWithdrawal)

	// Admin
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly(cfg))

	admin.GET("/submissions", h.AdminPendingSubmissions)
	admin.POST("/submissions/:id/review", h.AdminReviewSubmission)
	admin.GET("/withdrawals", h.AdminPendingWithdrawals)
	admin.POST("/withdrawals/:id/decide", h.AdminDecideWithdrawal)
	admin.POST("/withdrawals/:id/paid", h.AdminMarkWithdrawalPaid)
	admin.POST("/tasks", h.AdminCreateTask)
	admin.POST("/tasks/:id/active", h.AdminSetTaskActive)
	admin.POST("/users/:id/ban", h.AdminSetBanned)
	admin.POST("/users/:id/promote", h.AdminPromote)

	// WebSocket event feed
	r.GET("/ws", h.WS(hub))
}
