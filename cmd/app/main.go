package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earnhub/internal/bot"
	"earnhub/internal/config"
	"earnhub/internal/db"
	httpServer "earnhub/internal/http"
	"earnhub/internal/http/handlers"
	"earnhub/internal/http/middleware"
	"earnhub/internal/logger"
	"earnhub/internal/notify"
	"earnhub/internal/repository"
	"earnhub/internal/service"
	"earnhub/internal/telegram"
	"earnhub/internal/ws"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
)

const version = "1.2.0"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	cfg := config.Load()
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram bot auth failed", "error", err)
	}

	users := repository.NewUserRepository(dbPool)
	hub := ws.NewHub()
	sink := notify.Multi(notify.NewTelegramSink(api, users), hub)

	ledger := service.NewLedgerService(dbPool)
	referrals := service.NewReferralService(dbPool, ledger, sink)
	tasks := service.NewTaskService(dbPool, ledger, referrals, sink, cfg.ReferralBonus)
	withdrawals := service.NewWithdrawalService(dbPool, ledger, sink, service.WithdrawalConfig{
		MinWithdrawal:  cfg.MinWithdrawal,
		FeeRate:        cfg.WithdrawalFeeRate,
		FirstSurcharge: cfg.FirstWithdrawalSurcharge,
	})
	gate := service.NewAccessGate(telegram.NewMembershipOracle(api), cfg.RequiredChannels)
	adminSvc := service.NewAdminService(dbPool)

	h := handlers.NewHandler(dbPool, cfg, ledger, tasks, withdrawals, referrals, gate, hub)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, dbPool, cfg, h, hub, version)

	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		adminBot = bot.NewAdminBot(api, adminSvc, tasks, withdrawals, cfg.AdminTelegramIDs)
		go adminBot.Start()
	}

	// Periodic reminder about withdrawals stuck in the pending queue.
	sched := cron.New()
	if adminBot != nil {
		if _, err := sched.AddFunc("0 */6 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			adminBot.NotifyStalePending(ctx, 24)
		}); err != nil {
			logger.Error("failed to schedule stale withdrawal sweep", "error", err)
		}
	}
	sched.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	sched.Stop()
	if adminBot != nil {
		adminBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
