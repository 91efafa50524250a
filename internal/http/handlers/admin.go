package handlers

import (
	"net/http"
	"strconv"

	"earnhub/internal/domain"
	"earnhub/internal/logger"

	"github.com/gin-gonic/gin"
)

// Admin endpoints. All of these sit behind AdminOnly middleware.

// AdminPendingSubmissions lists submissions waiting for review.
func (h *Handler) AdminPendingSubmissions(c *gin.Context) {
	subs, err := h.Tasks.ListPendingReview(c.Request.Context(), 100)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// AdminReviewSubmission approves or rejects a submitted proof. Approval
// credits the reward and may trigger the referrer's bonus.
func (h *Handler) AdminReviewSubmission(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	var req reviewRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	sub, err := h.Tasks.Review(c.Request.Context(), id, req.Approve, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// AdminPendingWithdrawals lists the payout queue.
func (h *Handler) AdminPendingWithdrawals(c *gin.Context) {
	pending, err := h.Withdrawals.ListPending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": pending})
}

// AdminDecideWithdrawal approves or rejects a pending withdrawal.
func (h *Handler) AdminDecideWithdrawal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	var req reviewRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	w, err := h.Withdrawals.Decide(c.Request.Context(), id, req.Approve, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// AdminMarkWithdrawalPaid confirms the external payout went out.
func (h *Handler) AdminMarkWithdrawalPaid(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	w, err := h.Withdrawals.MarkPaid(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

type createTaskRequest struct {
	Title    string `json:"title" binding:"required"`
	Details  string `json:"details"`
	Link     string `json:"link"`
	Reward   int64  `json:"reward" binding:"required,min=1"`
	Category string `json:"category"`
}

// AdminCreateTask publishes a new task to the catalog.
func (h *Handler) AdminCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and reward are required"})
		return
	}

	task := &domain.Task{
		Title:    req.Title,
		Details:  req.Details,
		Link:     req.Link,
		Reward:   req.Reward,
		Category: req.Category,
		IsActive: true,
	}
	if err := h.Tasks.Create(c.Request.Context(), task); err != nil {
		fail(c, err)
		return
	}
	logger.Info("task created", "task_id", task.ID, "reward", task.Reward)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AdminSetTaskActive toggles a task in or out of the catalog.
func (h *Handler) AdminSetTaskActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req setActiveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	if err := h.Tasks.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": id, "active": *req.Active})
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// AdminSetBanned blocks or unblocks a user. Banned users keep their
// balances but fail every authenticated request.
func (h *Handler) AdminSetBanned(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req banRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Users.SetBanned(c.Request.Context(), id, req.Banned); err != nil {
		fail(c, err)
		return
	}
	logger.Info("user ban flag changed", "user_id", id, "banned", req.Banned)
	c.JSON(http.StatusOK, gin.H{"user_id": id, "banned": req.Banned})
}
