package core

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter constructs the Gin engine with routes wired.
// health may be nil, in which case /healthz always reports ok.
func NewRouter(cfg Config, store sessions.Store, auth *Authenticator, health Pinger) *gin.Engine {
	startedAt := time.Now()
	r := gin.Default()

	// Global middleware: CORS -> session (caller identity)
	r.Use(CORSMiddleware(cfg))
	r.Use(SessionMiddleware(cfg, store))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello World")
	})

	r.GET("/healthz", func(c *gin.Context) {
		payload := gin.H{
			"status":         "ok",
			"store":          cfg.CredentialBackend,
			"sessions":       cfg.SessionBackend,
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		}
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				log.Printf("health check failed: %v", err)
				payload["status"] = "unavailable"
				c.JSON(http.StatusServiceUnavailable, payload)
				return
			}
		}
		c.JSON(http.StatusOK, payload)
	})

	r.POST("/signup/", authHandler(auth, OpSignup))
	r.POST("/login/", authHandler(auth, OpLogin))

	return r
}

// authHandler adapts an auth operation to gin: it decodes the body, runs the
// guard chain plus the operation, and renders the outcome.
func authHandler(auth *Authenticator, op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c)
		if err != nil {
			switch {
			case errors.Is(err, errInvalidJSON):
				respondError(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
				return
			case errors.Is(err, errBodyTooLarge):
				respondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
				return
			}
			respondError(c, http.StatusBadRequest, "INVALID_BODY", "could not read request body")
			return
		}

		resp, err := auth.Handle(c.Request.Context(), op, Request{CallerID: callerID(c), Body: body})
		if err != nil {
			respondAuthError(c, err)
			return
		}

		switch resp.Kind {
		case ResponseWelcome:
			c.String(http.StatusOK, resp.Message)
		default:
			c.JSON(http.StatusOK, resp.Body)
		}
	}
}
