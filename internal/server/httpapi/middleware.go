package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/server/auth"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userContextKey = "user"

// requestIDMiddleware ensures every request carries a correlation id.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// authMiddleware resolves the bearer token to an internal user id and
// ensures the directory record exists before any handler runs. Handlers
// downstream always see a fully resolved caller.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AccessTokenHeaderName)
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "missing authorization header", "")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "token expired", "")
				return
			}
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "invalid token", "")
			return
		}

		user, err := s.users.EnsureUser(c.Request.Context(), userID)
		if err != nil {
			s.logger.Error(c.Request.Context(), "ensure user failed", "error", err.Error())
			abortWithError(c, http.StatusInternalServerError, codeInternal, "could not resolve user", "")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the resolved caller set by authMiddleware.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
