package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vkuzmin/dockeeper/internal/common"
	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// currentUserKey is where requireAuth stores the resolved user in the gin
// context.
const currentUserKey = "currentUser"

// requireAuth gates a route group behind a bearer access token. The token's
// subject is resolved to a live user record on every request, so a deleted
// user is locked out even while their access token is still unexpired.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			detail(c, http.StatusUnauthorized, "Invalid access token")
			return
		}
		token := strings.TrimPrefix(header, common.BearerPrefix)

		user, err := s.auth.ResolveUserFromToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidTokenPayload):
				detail(c, http.StatusUnauthorized, "Invalid token payload")
			case errors.Is(err, common.ErrUserNotFound):
				detail(c, http.StatusUnauthorized, "User not found")
			case errors.Is(err, common.ErrInvalidAccessToken):
				detail(c, http.StatusUnauthorized, "Invalid access token")
			default:
				s.logger.Error(c.Request.Context(), "token resolution failed", "error", err.Error())
				detail(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// currentUser returns the user stored by requireAuth.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
