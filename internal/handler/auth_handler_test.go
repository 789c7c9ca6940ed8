package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/middleware"
	"github.com/noah-isme/studylab-api/internal/models"
	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

type fakeAuthSrv struct {
	lastReq    models.LoginRequest
	loggedOut  []*models.JWTClaims
	failLogins bool
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	f.lastReq = req
	if f.failLogins {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid username or password.")
	}
	return &models.LoginResult{AccessToken: "token-1", User: models.UserInfo{ID: "u1", FullName: "Meera", Role: models.RoleStaff}}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, claims *models.JWTClaims, _ models.Actor) {
	f.loggedOut = append(f.loggedOut, claims)
}

func TestAuthLoginStoresSessionAndRedirects(t *testing.T) {
	srv := &fakeAuthSrv{}
	r := newTestRouter(t, nil)
	h := NewAuthHandler(srv)
	r.POST("/login", h.Login)
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, sessions.Default(c).Get(middleware.SessionTokenKey).(string))
	})

	w := doPost(r, "/login", url.Values{"username": {"bdm"}, "password": {"secret123"}, "next": {"/bdm/leads"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/bdm/leads", w.Header().Get("Location"))
	assert.Equal(t, "bdm", srv.lastReq.Username)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	who := httptest.NewRecorder()
	r.ServeHTTP(who, req)
	assert.Equal(t, "token-1", who.Body.String())
}

func TestAuthLoginFailureFlashes(t *testing.T) {
	r := newTestRouter(t, nil)
	r.POST("/login", NewAuthHandler(&fakeAuthSrv{failLogins: true}).Login)

	w := doPost(r, "/login", url.Values{"username": {"bdm"}, "password": {"bad"}, "next": {"/bdm/leads"}})
	assert.Equal(t, "/login?next=%2Fbdm%2Fleads", w.Header().Get("Location"))
	assert.Contains(t, flashesAfter(r, w), "error: Invalid username or password.")
}

func TestAuthLoginFormSkipsWhenSignedIn(t *testing.T) {
	r := newTestRouter(t, staffClaims)
	r.GET("/login", NewAuthHandler(&fakeAuthSrv{}).LoginForm)

	w := doGet(r, "/login")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAuthLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	r := newTestRouter(t, staffClaims)
	r.POST("/logout", NewAuthHandler(srv).Logout)

	w := doPost(r, "/logout", nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	require.Len(t, srv.loggedOut, 1)
	assert.Equal(t, "u-staff", srv.loggedOut[0].UserID)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/bdm/leads", safeNext("/bdm/leads"))
	assert.Equal(t, "/dashboard", safeNext(""))
	assert.Equal(t, "/dashboard", safeNext("https://evil.example"))
	assert.Equal(t, "/dashboard", safeNext("//evil.example"))
}
