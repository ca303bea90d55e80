// Package server wires configuration, database, and dependencies together
// and runs the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dukaan/app/controllers"
	"dukaan/app/repositories"
	"dukaan/app/routes"
	"dukaan/app/services"
	"dukaan/config"
	"dukaan/internal/kernel"
	"dukaan/pkg/auth"
	"dukaan/pkg/database"
	"dukaan/pkg/logger"
	"dukaan/pkg/middleware"
	"dukaan/pkg/migration"
	"github.com/redis/go-redis/v9"
)

// Start boots the application and blocks until shutdown.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	secret, err := config.JWTSecret()
	if err != nil {
		return err
	}

	db, err := database.Connect()
	if err != nil {
		return err
	}

	// Apply pending migrations so a fresh database is usable immediately.
	if err := migration.New(db).Run(); err != nil {
		return err
	}

	tokens := auth.NewTokenManager(secret, config.TokenTTL())

	userRepo := repositories.NewUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	productRepo := repositories.NewProductRepository(db)

	authService := services.NewAuthService(userRepo, tokens)

	deps := routes.Deps{
		Auth:     controllers.NewAuthController(authService, userRepo, orderRepo),
		Users:    controllers.NewUserController(userRepo, orderRepo),
		Orders:   controllers.NewOrderController(orderRepo),
		Products: controllers.NewProductController(productRepo),

		Tokens: tokens,
		FindUser: func(id uint) (string, string, error) {
			user, err := userRepo.FindByID(id)
			if err != nil {
				return "", "", err
			}
			return user.Name, user.Email, nil
		},

		LoginRateStore: loginRateStore(),
		LoginRateMax:   config.LoginRateMax(),
	}

	handler := kernel.Build(deps)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	return nil
}

// loginRateStore picks the limiter backend: Redis when configured (safe
// across replicas), otherwise in-process memory.
func loginRateStore() middleware.RateStore {
	addr := config.RedisAddr()
	if addr == "" {
		return middleware.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
	})
	logger.Info("login rate limiter backed by redis", "addr", addr)
	return middleware.NewRedisStore(client)
}
