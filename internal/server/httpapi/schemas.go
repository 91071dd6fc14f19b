package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vkuzmin/dockeeper/internal/server/models"
)

// registerRequest is the JSON body of POST /users.
type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// refreshRequest is the JSON body of POST /auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// userResponse is the public shape of a user record.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// tokenResponse is returned by both token endpoints. Lifetimes are reported
// in whole seconds.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// documentResponse is the metadata returned after an upload.
type documentResponse struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"created_at"`
}

func newDocumentResponse(d *models.Document) documentResponse {
	return documentResponse{
		ID:        d.ID,
		Filename:  d.Filename,
		MimeType:  d.MimeType,
		URI:       d.URI,
		CreatedAt: d.CreatedAt,
	}
}

// detail writes the error body shape used across the whole API.
func detail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}
