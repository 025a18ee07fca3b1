package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/postboard/live"
)

const (
	// SessionCookie names the cookie holding the browser's session id.
	SessionCookie = "postboard_sid"
	// ContextSessionKey stores the *live.Session inside Gin context.
	ContextSessionKey = "session"
)

// Session attaches the browser's live session to the context, issuing a new
// id when the cookie is missing or malformed.
func Session(hub *live.Hub, maxAgeSec int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := ctx.Cookie(SessionCookie)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.NewString()
		}
		// refresh on every request so an active browser keeps its session
		http.SetCookie(ctx.Writer, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   maxAgeSec,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		s := hub.Session(id)
		s.Touch()
		ctx.Set(ContextSessionKey, s)
		ctx.Next()
	}
}

// CurrentSession returns the session set by Session.
func CurrentSession(ctx *gin.Context) *live.Session {
	v, ok := ctx.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*live.Session)
	return s
}
