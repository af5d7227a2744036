package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/amit15110003/asha-health-project/config/scribe"
	deepgramClient "github.com/amit15110003/asha-health-project/gateways/web/clients/deepgram"
	openaiClient "github.com/amit15110003/asha-health-project/gateways/web/clients/openai"
	"github.com/amit15110003/asha-health-project/gateways/web/handler"
	"github.com/amit15110003/asha-health-project/services/scribe/usecase"
)

type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	deepgram *deepgramClient.Client
	openai   *openaiClient.Client
	usecase  usecase.Usecase
	handler  *handler.Handler
}

func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	log.Info("creating new scribe server")
	log.Debug("server config",
		slog.Int("port", cfg.Port),
		slog.String("deepgram_api_key_set", fmt.Sprintf("%t", cfg.Deepgram.APIKey != "")),
		slog.String("deepgram_model", cfg.Deepgram.Model),
		slog.String("openai_api_key_set", fmt.Sprintf("%t", cfg.OpenAI.APIKey != "")),
		slog.String("openai_model", cfg.OpenAI.Model))

	log.Debug("creating deepgram client")
	dg := deepgramClient.New(&cfg.Deepgram, log)
	log.Info("deepgram client created successfully")

	log.Debug("creating openai client")
	oa := openaiClient.New(&cfg.OpenAI, log)
	log.Info("openai client created successfully")

	log.Debug("creating scribe usecase")
	uc := usecase.New(dg, oa, log)
	log.Info("scribe usecase created successfully")

	log.Debug("creating handler")
	h := handler.New(uc, log)
	log.Info("handler created successfully")

	log.Info("scribe server instance created successfully")
	return &Server{
		cfg:      cfg,
		log:      log,
		deepgram: dg,
		openai:   oa,
		usecase:  uc,
		handler:  h,
	}, nil
}

func (s *Server) router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(api chi.Router) {
		s.handler.RegisterRoutes(api)
	})
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting scribe server")
	s.log.Debug("building router")
	router := s.router()
	s.log.Info("routes registered successfully")

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Debug("creating HTTP server",
		slog.String("addr", addr),
		slog.Duration("read_timeout", 15*time.Second),
		slog.Duration("write_timeout", 15*time.Second),
		slog.Duration("idle_timeout", 60*time.Second))
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Info("HTTP server configured")

	s.log.Debug("setting up shutdown signal handling")
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.log.Info("scribe gateway started", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil {
			s.log.Error("ListenAndServe error", slog.String("error", err.Error()))
		}
		serverErrors <- err
	}()

	s.log.Info("entering main server loop")
	select {
	case err := <-serverErrors:
		s.log.Error("server error received", slog.String("error", err.Error()))
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.log.Info("start shutdown", slog.String("signal", sig.String()))
		return s.stop(srv)
	case <-ctx.Done():
		s.log.Info("closing server due to context cancellation")
		return s.stop(srv)
	}
}

func (s *Server) stop(srv *http.Server) error {
	s.log.Debug("creating shutdown timeout context", slog.Duration("timeout", 10*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("shutting down HTTP server gracefully")
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		s.log.Warn("forcing server close")
		srv.Close()
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	s.log.Info("server shutdown completed successfully")
	return nil
}
