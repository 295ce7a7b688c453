package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	"tripdesk/internal/health"
	"tripdesk/pkg/config"
	"tripdesk/pkg/contracts"
	"tripdesk/pkg/middleware"
)

// uploadPathPrefix carries multipart bodies, so it is exempt from the JSON
// content-type check and the JSON body-size cap.
const uploadPathPrefix = "/api/v1/upload"

type Application struct {
	cfg            *config.Config
	server         *http.Server
	healthHandler  http.Handler
	appHTTPHandler http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp wires the health endpoints (minimal middleware) and the admin API
// (full stack: size cap, content-type check, admin gate, logging, recovery).
func (a *Application) SetApp(mongoClient *mongo.Client, gate middleware.AdminGate, handlers ...contracts.Handler) {
	a.setHealthHandler(mongoClient)
	a.setAppHandler(gate, handlers...)
	a.setAppServer()
}

func (a *Application) setHealthHandler(mongoClient *mongo.Client) {
	healthRouter := httprouter.New()
	health.NewHandler(mongoClient, a.cfg.Log).RegisterRoutes(healthRouter)

	var handler http.Handler = healthRouter
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.healthHandler = handler
}

func (a *Application) setAppHandler(gate middleware.AdminGate, handlers ...contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	var handler http.Handler = appRouter
	handler = middleware.AdminAuth(a.cfg.AuthSecret, gate, a.cfg.Log)(handler)
	handler = middleware.ContentTypeValidation(a.cfg.Log, uploadPathPrefix)(handler)
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize), uploadPathPrefix)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.appHTTPHandler = handler

	a.cfg.Log.Info("Admin API configured behind the allow-list gate")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
