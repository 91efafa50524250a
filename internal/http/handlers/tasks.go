package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListTasks returns the active task catalog.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask returns one task together with the caller's live submission
// on it, so the client can render "start" vs "awaiting review".
func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), taskID)
	if err != nil {
		fail(c, err)
		return
	}
	sub, err := h.Tasks.ActiveSubmission(c.Request.Context(), userID, taskID)
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{"task": task}
	if sub != nil {
		resp["submission"] = sub
	}
	c.JSON(http.StatusOK, resp)
}

// MySubmissions returns the user's submission history.
func (h *Handler) MySubmissions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	subs, err := h.Tasks.ListMine(c.Request.Context(), userID, 100)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// StartTask opens a submission for the task.
func (h *Handler) StartTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	sub, err := h.Tasks.Start(c.Request.Context(), userID, taskID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

type submitTaskRequest struct {
	// ProofRef is the opaque artifact reference returned by storage
	// (for Telegram uploads, the file id).
	ProofRef string `json:"proof_ref" binding:"required"`
}

// SubmitTask attaches proof and hands the submission to review.
func (h *Handler) SubmitTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req submitTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proof_ref is required"})
		return
	}

	sub, err := h.Tasks.Submit(c.Request.Context(), userID, taskID, req.ProofRef)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}
