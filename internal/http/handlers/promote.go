package handlers

import (
	"net/http"
	"strconv"

	"earnhub/internal/logger"

	"github.com/gin-gonic/gin"
)

type promoteRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// AdminPromote moves part of a user's main wallet into the
// withdrawable cash wallet. Promotion is granted by admins, it is not
// a self-service operation.
func (h *Handler) AdminPromote(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req promoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	if err := h.Ledger.Transfer(c.Request.Context(), userID, req.Amount, nil); err != nil {
		fail(c, err)
		return
	}

	main, cash, err := h.Ledger.GetBalances(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	logger.Info("wallet promotion", "user_id", userID, "amount", req.Amount)
	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"main_wallet": main,
		"cash_wallet": cash,
	})
}
