package handlers

import (
	"net/http"

	"earnhub/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ReferralStats returns the user's referral counters.
func (h *Handler) ReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	stats, err := h.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ReferralLink builds the shareable deep link.
// Format: https://t.me/bot_username?start=CODE
func (h *Handler) ReferralLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	link := "https://t.me/" + h.Cfg.BotUsername + "?start=" + user.ReferralCode
	c.JSON(http.StatusOK, gin.H{
		"code": user.ReferralCode,
		"link": link,
	})
}
