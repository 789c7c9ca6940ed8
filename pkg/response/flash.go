package response

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/studylab-api/pkg/errors"
)

// CurrentUserKey is the gin context key storing the authenticated actor's claims.
const CurrentUserKey = "currentUser"

// FlashLevel classifies a one-shot message shown on the next rendered page.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

var flashLevels = []FlashLevel{FlashSuccess, FlashWarning, FlashError}

// Flash is a message popped from the session.
type Flash struct {
	Level   FlashLevel
	Message string
}

func session(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}

// AddFlash queues a message for the next page render. Without a session store it is a no-op.
func AddFlash(c *gin.Context, level FlashLevel, message string) {
	s := session(c)
	if s == nil || message == "" {
		return
	}
	s.AddFlash(message, string(level))
	_ = s.Save()
}

// Flashes pops every queued message.
func Flashes(c *gin.Context) []Flash {
	s := session(c)
	if s == nil {
		return nil
	}
	var out []Flash
	for _, level := range flashLevels {
		for _, raw := range s.Flashes(string(level)) {
			if msg, ok := raw.(string); ok {
				out = append(out, Flash{Level: level, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = s.Save()
	}
	return out
}

// RedirectWithError turns a domain error into a flash message and redirects to a safe page.
// Internal failures never leak their cause to the actor.
func RedirectWithError(c *gin.Context, err error, location string) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	switch {
	case appErrors.IsWarning(appErr):
		AddFlash(c, FlashWarning, appErr.Message)
	case appErr.Code == appErrors.ErrInternal.Code:
		AddFlash(c, FlashError, "Something went wrong. Please try again.")
	default:
		AddFlash(c, FlashError, appErr.Message)
	}
	Redirect(c, location)
}
