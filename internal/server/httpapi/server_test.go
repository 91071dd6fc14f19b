package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkuzmin/dockeeper/internal/common"
	"github.com/vkuzmin/dockeeper/internal/logging"
	"github.com/vkuzmin/dockeeper/internal/server/config"
	"github.com/vkuzmin/dockeeper/internal/server/models"
	"github.com/vkuzmin/dockeeper/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }

type fakeAuthService struct {
	authenticateResult *services.AuthResult
	authenticateErr    error
	refreshResult      *services.AuthResult
	refreshErr         error
	resolveUser        *models.User
	resolveErr         error
	gotToken           string
}

func (f *fakeAuthService) Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error) {
	return f.authenticateResult, f.authenticateErr
}

func (f *fakeAuthService) Refresh(ctx context.Context, raw string) (*services.AuthResult, error) {
	return f.refreshResult, f.refreshErr
}

func (f *fakeAuthService) ResolveUserFromToken(ctx context.Context, token string) (*models.User, error) {
	f.gotToken = token
	return f.resolveUser, f.resolveErr
}

type fakeUserService struct {
	result *models.User
	err    error
}

func (f *fakeUserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	return f.result, f.err
}

type fakeDocumentService struct {
	saved  *models.Document
	getOut *models.Document
	err    error
	getErr error
}

func (f *fakeDocumentService) SaveUpload(ctx context.Context, filename, mimeType, uri string, data []byte) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = &models.Document{
		ID:        1,
		Filename:  filename,
		MimeType:  mimeType,
		URI:       uri,
		FileBytes: data,
		CreatedAt: time.Now().UTC(),
	}
	return f.saved, nil
}

func (f *fakeDocumentService) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	return f.getOut, f.getErr
}

func newTestServer(auth *fakeAuthService, users *fakeUserService, docs *fakeDocumentService) *Server {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenValidityDuration = 15 * time.Minute
	cfg.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	return NewServer(cfg, nopLogger{}, auth, users, docs)
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeAuthService{}, &fakeUserService{}, &fakeDocumentService{})
	w := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterUser(t *testing.T) {
	created := &models.User{ID: 3, Username: "alice", CreatedAt: time.Now().UTC()}

	tests := []struct {
		name       string
		body       string
		svc        *fakeUserService
		wantStatus int
		wantDetail string
	}{
		{"created", `{"username":"alice","password":"pw"}`, &fakeUserService{result: created}, http.StatusCreated, ""},
		{"duplicate", `{"username":"alice","password":"pw"}`, &fakeUserService{err: common.ErrorAlreadyExists}, http.StatusConflict, "Username is already in use"},
		{"missing fields", `{"username":"alice"}`, &fakeUserService{}, http.StatusUnprocessableEntity, "username and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeAuthService{}, tt.svc, &fakeDocumentService{})
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := doRequest(t, s, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
				return
			}
			var resp userResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, int64(3), resp.ID)
			assert.Equal(t, "alice", resp.Username)
		})
	}
}

func loginRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLogin_Success(t *testing.T) {
	auth := &fakeAuthService{
		authenticateResult: &services.AuthResult{
			User: &models.User{ID: 1, Username: "alice"},
			Tokens: services.TokenPair{
				AccessToken:  "acc",
				RefreshToken: "ref",
				TokenType:    common.TokenTypeBearer,
			},
		},
	}
	s := newTestServer(auth, &fakeUserService{}, &fakeDocumentService{})

	w := doRequest(t, s, loginRequest("alice", "pw"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acc", resp.AccessToken)
	assert.Equal(t, "ref", resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(15*60), resp.ExpiresIn)
	assert.Equal(t, int64(7*24*3600), resp.RefreshExpiresIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth := &fakeAuthService{authenticateErr: common.ErrInvalidCredentials}
	s := newTestServer(auth, &fakeUserService{}, &fakeDocumentService{})

	w := doRequest(t, s, loginRequest("alice", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeDetail(t, w))
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(&fakeAuthService{}, &fakeUserService{}, &fakeDocumentService{})
	w := doRequest(t, s, loginRequest("alice", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRefresh(t *testing.T) {
	ok := &services.AuthResult{
		User:   &models.User{ID: 1, Username: "alice"},
		Tokens: services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2", TokenType: common.TokenTypeBearer},
	}

	tests := []struct {
		name       string
		auth       *fakeAuthService
		wantStatus int
		wantDetail string
	}{
		{"rotated", &fakeAuthService{refreshResult: ok}, http.StatusOK, ""},
		{"invalid", &fakeAuthService{refreshErr: common.ErrInvalidRefreshToken}, http.StatusUnauthorized, "Invalid refresh token"},
		{"orphaned", &fakeAuthService{refreshErr: common.ErrRefreshTokenOrphaned}, http.StatusUnauthorized, "Refresh token has no associated user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.auth, &fakeUserService{}, &fakeDocumentService{})
			req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"ref"}`))
			req.Header.Set("Content-Type", "application/json")
			w := doRequest(t, s, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
				return
			}
			var resp tokenResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ref2", resp.RefreshToken)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		auth       *fakeAuthService
		wantStatus int
		wantDetail string
	}{
		{"missing header", "", &fakeAuthService{}, http.StatusUnauthorized, "Invalid access token"},
		{"not bearer", "Basic abc", &fakeAuthService{}, http.StatusUnauthorized, "Invalid access token"},
		{"bad token", "Bearer junk", &fakeAuthService{resolveErr: common.ErrInvalidAccessToken}, http.StatusUnauthorized, "Invalid access token"},
		{"wrong type", "Bearer refresh-as-access", &fakeAuthService{resolveErr: common.ErrInvalidTokenPayload}, http.StatusUnauthorized, "Invalid token payload"},
		{"deleted user", "Bearer valid", &fakeAuthService{resolveErr: common.ErrUserNotFound}, http.StatusUnauthorized, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.auth, &fakeUserService{}, &fakeDocumentService{})
			req := httptest.NewRequest(http.MethodGet, "/documents/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := doRequest(t, s, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func multipartUpload(t *testing.T, filename, contentType, uri string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if uri != "" {
		require.NoError(t, mw.WriteField("uri", uri))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	auth := &fakeAuthService{resolveUser: &models.User{ID: 1, Username: "alice"}}
	docs := &fakeDocumentService{}
	s := newTestServer(auth, &fakeUserService{}, docs)

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", "s3://docs/report.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token")
	w := doRequest(t, s, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "token", auth.gotToken)

	var resp documentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "report.pdf", resp.Filename)
	assert.Equal(t, "application/pdf", resp.MimeType)
	assert.Equal(t, "s3://docs/report.pdf", resp.URI)

	require.NotNil(t, docs.saved)
	assert.Equal(t, []byte("%PDF-1.4"), docs.saved.FileBytes)
}

func TestUploadDocument_MissingFile(t *testing.T) {
	auth := &fakeAuthService{resolveUser: &models.User{ID: 1, Username: "alice"}}
	s := newTestServer(auth, &fakeUserService{}, &fakeDocumentService{})

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer token")
	w := doRequest(t, s, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "file is required", decodeDetail(t, w))
}

func TestDownloadDocument(t *testing.T) {
	auth := &fakeAuthService{resolveUser: &models.User{ID: 1, Username: "alice"}}
	docs := &fakeDocumentService{getOut: &models.Document{
		ID:        9,
		Filename:  "scan.png",
		MimeType:  "image/png",
		FileBytes: []byte{0x89, 0x50, 0x4e, 0x47},
	}}
	s := newTestServer(auth, &fakeUserService{}, docs)

	req := httptest.NewRequest(http.MethodGet, "/documents/9", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := doRequest(t, s, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="scan.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, w.Body.Bytes())
}

func TestDownloadDocument_NotFound(t *testing.T) {
	auth := &fakeAuthService{resolveUser: &models.User{ID: 1, Username: "alice"}}
	docs := &fakeDocumentService{getErr: common.ErrorNotFound}
	s := newTestServer(auth, &fakeUserService{}, docs)

	req := httptest.NewRequest(http.MethodGet, "/documents/404", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := doRequest(t, s, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Document not found", decodeDetail(t, w))
}

func TestDownloadDocument_BadID(t *testing.T) {
	auth := &fakeAuthService{resolveUser: &models.User{ID: 1, Username: "alice"}}
	s := newTestServer(auth, &fakeUserService{}, &fakeDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/documents/not-a-number", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := doRequest(t, s, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
