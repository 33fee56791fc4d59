package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/router"
	v1 "github.com/mstgnz/robogate/router/v1"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load env: %v\n", err)
		os.Exit(1)
	}

	logger.InitGlobalLogger()
	_ = config.App()

	appConfig := config.GetAppConfig()

	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv()
	paymentService := v1.NewPaymentService(providerConfig)

	r := chi.NewRouter()
	router.Routes(r, paymentService)

	timeout := time.Duration(config.GetIntEnv("HTTP_TIMEOUT_SECONDS", 30)) * time.Second
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Port),
		Handler:           r,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Fields: map[string]any{
			"port":        appConfig.Port,
			"environment": appConfig.Environment,
			"providers":   paymentService.ConfiguredProviders(),
		},
	})

	<-ctx.Done()

	logger.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
