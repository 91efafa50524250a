package handlers

import (
	"errors"
	"net/http"

	"earnhub/internal/config"
	"earnhub/internal/domain"
	"earnhub/internal/repository"
	"earnhub/internal/service"
	"earnhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB          *pgxpool.Pool
	Cfg         *config.Config
	Users       *repository.UserRepository
	Ledger      *service.LedgerService
	Tasks       *service.TaskService
	Withdrawals *service.WithdrawalService
	Referrals   *service.ReferralService
	Gate        *service.AccessGate
	Hub         *ws.Hub
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config, ledger *service.LedgerService, tasks *service.TaskService, withdrawals *service.WithdrawalService, referrals *service.ReferralService, gate *service.AccessGate, hub *ws.Hub) *Handler {
	return &Handler{
		DB:          db,
		Cfg:         cfg,
		Users:       repository.NewUserRepository(db),
		Ledger:      ledger,
		Tasks:       tasks,
		Withdrawals: withdrawals,
		Referrals:   referrals,
		Gate:        gate,
		Hub:         hub,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// fail maps a domain error to an HTTP response.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrTaskInactive),
		errors.Is(err, domain.ErrDuplicateSubmission),
		errors.Is(err, service.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
