package handlers

import (
	"net/http"

	"earnhub/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// MyTransactions returns the user's ledger audit trail.
func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	history, err := h.Ledger.History(c.Request.Context(), userID, 100)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

// MyChannels reports which required channels the user still has to
// join before ledger-affecting actions are allowed.
func (h *Handler) MyChannels(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	missing := h.Gate.Evaluate(c.Request.Context(), user.TgID)
	c.JSON(http.StatusOK, gin.H{
		"required": h.Gate.Channels(),
		"missing":  missing,
		"granted":  len(missing) == 0,
	})
}
