package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"auth-gateway/core"
)

type credentialBackend interface {
	core.CredentialStore
	core.Pinger
}

func main() {
	cfg := core.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	gin.SetMode(cfg.GinMode)

	var (
		db          *pgxpool.Pool
		redisClient *redis.Client
	)
	if cfg.CredentialBackend == core.BackendPostgres {
		db, err = core.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer db.Close()
		if cfg.DBSync {
			if err := core.EnsureSchema(ctx, db); err != nil {
				log.Fatalf("failed to sync schema: %v", err)
			}
		}
	}
	if cfg.CredentialBackend == core.BackendRedis || cfg.SessionBackend == core.BackendRedis {
		redisClient, err = core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()
	}

	var creds credentialBackend
	switch cfg.CredentialBackend {
	case core.BackendMemory:
		creds = core.NewMemoryCredentialStore()
	case core.BackendPostgres:
		creds = core.NewPgCredentialStore(db)
	case core.BackendRedis:
		creds = core.NewRedisCredentialStore(redisClient)
	default:
		log.Fatalf("unknown CREDENTIAL_STORE %q", cfg.CredentialBackend)
	}

	var sessionState core.SessionState
	switch cfg.SessionBackend {
	case core.BackendMemory:
		sessionState = core.NewMemorySessionState()
	case core.BackendRedis:
		sessionState = core.NewRedisSessionState(redisClient)
	default:
		log.Fatalf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	if _, err := core.SeedAccounts(ctx, creds, cfg.SeedAccountsPath); err != nil {
		log.Fatalf("seed accounts failed: %v", err)
	}

	// Gorilla cookie store carries the caller identity only.
	cookies := sessions.NewCookieStore([]byte(cfg.SessionKey))
	auth := core.NewAuthenticator(creds, sessionState)
	router := core.NewRouter(cfg, cookies, auth, creds)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting api server on %s (credentials=%s sessions=%s)", srv.Addr, cfg.CredentialBackend, cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	log.Printf("api server stopped")
}
