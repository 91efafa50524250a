package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"earnhub/internal/domain"
	"earnhub/internal/logger"
	"earnhub/internal/repository"
	"earnhub/internal/service"
	"earnhub/internal/telegram"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth validates Telegram WebApp init data and lazily creates the user
// on first contact. A referral code in start_param attaches the
// referrer at creation time; it is never changed afterwards.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	values, ok := service.ValidateTelegramInitData(req.InitData, h.Cfg.BotToken)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
		return
	}

	tgUser, err := telegram.ParseUser(values)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user data"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByTgID(ctx, tgUser.ID)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = h.createUser(ctx, tgUser.ID, tgUser.Username, tgUser.FirstName, values.Get("start_param"))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userView(user),
	})
}

func (h *Handler) createUser(ctx context.Context, tgID int64, username, firstName, startParam string) (*domain.User, error) {
	u := &domain.User{
		TgID:         tgID,
		Username:     username,
		FirstName:    firstName,
		ReferralCode: repository.GenerateReferralCode(),
	}

	// start_param carries the inviter's referral code from the deep
	// link. A code owned by the new user themselves is ignored; one
	// cannot be their own referrer.
	if code := strings.TrimSpace(startParam); code != "" {
		referrer, err := h.Users.GetByReferralCode(ctx, code)
		if err == nil && referrer.TgID != tgID {
			u.ReferredBy = &referrer.ID
		}
	}

	if err := h.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user created", "user_id", u.ID, "tg_id", tgID, "referred", u.ReferredBy != nil)
	return u, nil
}

func userView(u *domain.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"tg_id":           u.TgID,
		"username":        u.Username,
		"first_name":      u.FirstName,
		"main_wallet":     u.MainWallet,
		"cash_wallet":     u.CashWallet,
		"total_balance":   u.TotalBalance(),
		"referral_code":   u.ReferralCode,
		"tasks_completed": u.TasksCompleted,
		"created_at":      u.CreatedAt,
	}
}
