package middleware

import (
	"net/http"

	"earnhub/internal/config"
	"earnhub/internal/domain"
	"earnhub/internal/repository"
	"earnhub/internal/service"

	"github.com/gin-gonic/gin"
)

// LoadUser resolves the authenticated user record and rejects banned
// accounts. Requires JWT to have run. Handlers read the record via
// CurrentUser.
func LoadUser(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if user.IsBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account banned"})
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// CurrentUser returns the record stored by LoadUser.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get("current_user")
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// AdminOnly allows only users whose Telegram id is configured as an
// admin. The gate trusts the configured list verbatim.
func AdminOnly(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !cfg.IsAdmin(user.TgID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// ChannelGate blocks ledger-affecting actions until the user has
// joined every required channel. The gate itself is fail-open per
// channel on oracle errors.
func ChannelGate(gate *service.AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if missing := gate.Evaluate(c.Request.Context(), user.TgID); len(missing) > 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":            "subscription required",
				"missing_channels": missing,
			})
			return
		}
		c.Next()
	}
}
