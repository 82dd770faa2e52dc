package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pagewise/bookstore/cart-service/internal/app/config"
	"github.com/pagewise/bookstore/cart-service/internal/platform/logger"
)

type Server struct {
	httpServer *http.Server
	log        logger.Logger
	port       string
}

func NewRouter(handler *CartHandler) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/cart", handler.HandleGetCart)
		r.Post("/cart/items", handler.HandleAddItem)
		r.Put("/cart/items", handler.HandleUpdateItem)
		r.Delete("/cart/items", handler.HandleRemoveItem)
		r.Get("/cart/stock", handler.HandleValidateStock)
		r.Post("/cart/deactivate", handler.HandleDeactivateCart)
		r.Get("/carts", handler.HandleListCarts)
	})

	return mux
}

func NewServer(log logger.Logger, cfg config.HTTPServerConfig, handler *CartHandler) *Server {
	mux := NewRouter(handler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
		port:       cfg.Port,
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server is starting on port %s", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed to serve: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server is stopping gracefully")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown timed out, forcing close")
		_ = s.httpServer.Close()
		return err
	}
	s.log.Info("HTTP server stopped gracefully")
	return nil
}
