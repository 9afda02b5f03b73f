package core

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "auth_session"
	// callerIDKey is both the cookie session value and the gin context key.
	callerIDKey = "caller_id"
)

// SessionMiddleware makes sure every request carries a caller identity.
// The identity lives in a signed cookie; authentication state itself is kept
// in SessionState, keyed by that identity.
func SessionMiddleware(cfg Config, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// A cookie that fails verification yields a fresh session alongside the error.
		session, err := store.Get(c.Request, sessionName)
		if session == nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "session error")
			c.Abort()
			return
		}

		callerID, _ := session.Values[callerIDKey].(string)
		if callerID == "" || err != nil {
			callerID = uuid.NewString()
			session.Values = map[interface{}]interface{}{callerIDKey: callerID}
			applySessionOptions(cfg, session)
			if err := session.Save(c.Request, c.Writer); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to persist session")
				c.Abort()
				return
			}
		}

		c.Set(callerIDKey, callerID)
		c.Next()
	}
}

// callerID returns the identity set by SessionMiddleware.
func callerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

// CORSMiddleware allows cfg.AllowedOrigins, or any origin when none are configured.
func CORSMiddleware(cfg Config) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}
	cc.AllowCredentials = true
	cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	return cors.New(cc)
}

func applySessionOptions(cfg Config, session *sessions.Session) {
	if session.Options == nil {
		session.Options = &sessions.Options{}
	}
	session.Options.Path = "/"
	session.Options.MaxAge = cfg.CookieMaxAge
	session.Options.HttpOnly = true
	session.Options.Secure = cfg.CookieSecure
	session.Options.SameSite = sameSiteFromString(cfg.CookieSameSite)
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
