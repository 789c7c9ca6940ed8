package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studylab-api/internal/middleware"
	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context, claims *models.JWTClaims, actor models.Actor)
}

// AuthHandler wires the login form to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// LoginForm renders the login page, or skips it when a session is already active.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	if claimsFromContext(c) != nil {
		response.Redirect(c, safeNext(c.Query("next")))
		return
	}
	response.HTML(c, http.StatusOK, "login.html", gin.H{"title": "Sign in", "next": safeNext(c.Query("next"))})
}

// Login godoc
// @Summary Sign in
// @Description Verify credentials, store the access token in the session and redirect to the dashboard
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Page to open after sign in"
// @Success 303 "Redirect to next page"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	next := safeNext(c.PostForm("next"))

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.RedirectWithError(c, err, "/login?next="+url.QueryEscape(next))
		return
	}
	if err := middleware.StoreSessionToken(c, res.AccessToken); err != nil {
		response.RedirectWithError(c, err, "/login")
		return
	}

	response.AddFlash(c, response.FlashSuccess, "Welcome back, "+res.User.FullName+".")
	response.Redirect(c, next)
}

// Logout godoc
// @Summary Sign out
// @Tags Authentication
// @Success 303 "Redirect to login"
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), claimsFromContext(c), actorFromContext(c))
	middleware.ClearSession(c)
	response.AddFlash(c, response.FlashSuccess, "You have been signed out.")
	response.Redirect(c, "/login")
}

// safeNext only allows local paths so the login form cannot be used as an open redirect.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/dashboard"
	}
	return next
}
