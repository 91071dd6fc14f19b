package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vkuzmin/dockeeper/internal/common"
	"github.com/vkuzmin/dockeeper/internal/server/services"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			detail(c, http.StatusConflict, "Username is already in use")
			return
		}
		s.logger.Error(c.Request.Context(), "registration failed", "error", err.Error())
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", user.Username)
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// login accepts form-encoded credentials and returns a token pair.
func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		detail(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	result, err := s.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			detail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error(c.Request.Context(), "login failed", "error", err.Error())
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info(c.Request.Context(), "Logged in", "username", result.User.Username)
	c.JSON(http.StatusOK, s.newTokenResponse(result.Tokens))
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "refresh_token is required")
		return
	}

	result, err := s.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidRefreshToken):
			detail(c, http.StatusUnauthorized, "Invalid refresh token")
		case errors.Is(err, common.ErrRefreshTokenOrphaned):
			detail(c, http.StatusUnauthorized, "Refresh token has no associated user")
		default:
			s.logger.Error(c.Request.Context(), "refresh failed", "error", err.Error())
			detail(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, s.newTokenResponse(result.Tokens))
}

func (s *Server) newTokenResponse(t services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      t.AccessToken,
		RefreshToken:     t.RefreshToken,
		TokenType:        t.TokenType,
		ExpiresIn:        int64(s.accessTokenTTL.Seconds()),
		RefreshExpiresIn: int64(s.refreshTokenTTL.Seconds()),
	}
}

// uploadDocument accepts a multipart form with a "file" part and an optional
// "uri" field labelling the document's origin.
func (s *Server) uploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "file is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "file is not readable")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "file is not readable")
		return
	}

	doc, err := s.documents.SaveUpload(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		c.PostForm("uri"),
		data,
	)
	if err != nil {
		s.logger.Error(c.Request.Context(), "document upload failed", "error", err.Error())
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, _ := currentUser(c)
	s.logger.Info(c.Request.Context(), "Document stored",
		"id", doc.ID, "filename", doc.Filename, "username", user.Username)
	c.JSON(http.StatusCreated, newDocumentResponse(doc))
}

func (s *Server) downloadDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "document id must be an integer")
		return
	}

	doc, err := s.documents.GetDocument(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			detail(c, http.StatusNotFound, "Document not found")
			return
		}
		s.logger.Error(c.Request.Context(), "document fetch failed", "error", err.Error())
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.MimeType, doc.FileBytes)
}
