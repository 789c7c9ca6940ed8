package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = response.CurrentUserKey

// SessionTokenKey is the session entry holding the access token of a browser login.
const SessionTokenKey = "access_token"

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token. API clients send a Bearer header and get
// a JSON 401; browsers carry the token in the session and are sent to the login page instead.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			claims, err := validator.ValidateToken(token)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			c.Set(ContextUserKey, claims)
			c.Next()
			return
		}

		token := sessionToken(c)
		if token == "" {
			redirectToLogin(c)
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			ClearSession(c)
			redirectToLogin(c)
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			token = sessionToken(c)
		}
		if token != "" {
			if claims, err := validator.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// Claims returns the authenticated claims, if any.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}

// StoreSessionToken keeps the access token in the session cookie.
func StoreSessionToken(c *gin.Context, token string) error {
	s := sessions.Default(c)
	s.Set(SessionTokenKey, token)
	return s.Save()
}

// ClearSession drops the access token while keeping the session usable for flash messages.
func ClearSession(c *gin.Context) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return
	}
	s := sessions.Default(c)
	s.Delete(SessionTokenKey)
	_ = s.Save()
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func sessionToken(c *gin.Context) string {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	token, _ := sessions.Default(c).Get(SessionTokenKey).(string)
	return token
}

func redirectToLogin(c *gin.Context) {
	target := "/login"
	if c.Request.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// apiRequest reports whether the caller authenticated with a Bearer header.
func apiRequest(c *gin.Context) bool {
	_, ok := bearerToken(c)
	return ok
}
