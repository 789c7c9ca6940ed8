package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studylab-api/internal/middleware"
	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/response"
	"github.com/noah-isme/studylab-api/web"
)

var staffClaims = &models.JWTClaims{UserID: "u-staff", Username: "bdm", FullName: "Meera", Role: models.RoleStaff}

// newTestRouter returns an engine with sessions, templates and the given claims attached to every request.
func newTestRouter(t *testing.T, claims *models.JWTClaims) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates("INR")
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, claims)
			c.Next()
		})
	}
	r.GET("/_flashes", func(c *gin.Context) {
		var msgs []string
		for _, f := range response.Flashes(c) {
			msgs = append(msgs, string(f.Level)+": "+f.Message)
		}
		c.String(http.StatusOK, strings.Join(msgs, "\n"))
	})
	return r
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func doPost(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

// flashesAfter reads the flash messages set by a previous response.
func flashesAfter(r *gin.Engine, prev *httptest.ResponseRecorder) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_flashes", nil)
	for _, ck := range prev.Result().Cookies() {
		req.AddCookie(ck)
	}
	r.ServeHTTP(w, req)
	return w.Body.String()
}
