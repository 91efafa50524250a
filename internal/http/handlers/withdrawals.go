package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type withdrawRequest struct {
	Amount int64  `json:"amount" binding:"required,min=1"`
	Method string `json:"method" binding:"required"`
}

// RequestWithdrawal creates a pending withdrawal from the cash wallet.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req withdrawRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and method are required"})
		return
	}

	w, err := h.Withdrawals.Request(c.Request.Context(), userID, req.Amount, req.Method)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// WithdrawalEstimate shows the fee before the user commits.
func (h *Handler) WithdrawalEstimate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req withdrawRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and method are required"})
		return
	}

	estimate, err := h.Withdrawals.Estimate(c.Request.Context(), userID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// MyWithdrawals returns the user's withdrawal history.
func (h *Handler) MyWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	history, err := h.Withdrawals.History(c.Request.Context(), userID, 50)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": history})
}
