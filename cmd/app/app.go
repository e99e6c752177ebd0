package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jahidulislamseo/image-converter-tool/internal/analyzer"
	"github.com/jahidulislamseo/image-converter-tool/internal/ratelimiter"
)

type application struct {
	config      config
	logger      *zap.SugaredLogger
	describer   *analyzer.Client
	rateLimiter ratelimiter.Limiter
	metrics     *metrics
}

type config struct {
	addr           string
	maxUploadBytes int64
	openaiCfg      openaiConfig
	ratelimiter    ratelimiter.Config
}

type openaiConfig struct {
	apiKey string
	model  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)
	r.Use(app.metrics.httpMetricsMiddleware)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", app.healthzHandler)
	r.Method(http.MethodGet, "/metrics", app.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", app.convertImageHandler)
		r.Post("/preview", app.previewImageHandler)
		r.Post("/analyze-image", app.analyzeImageHandler)
	})

	return r
}

func (app *application) healthzHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) run(mux http.Handler) error {

	srv := http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server started", "addr", app.config.addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server stopped", "addr", app.config.addr)

	return nil
}
