package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type matchService interface {
	ListMatches(ctx context.Context) ([]*entity.Match, error)
	GetMatch(ctx context.Context, id string) (*entity.Match, error)
}

type Server struct {
	logger       *slog.Logger
	matchService matchService
}

func New(logger *slog.Logger, matchService matchService) *Server {
	return &Server{
		logger:       logger.With("component", "http_server"),
		matchService: matchService,
	}
}

// Start - serves the REST API until ctx is done, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down", "error", err)
		}
	})
	defer stop()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /matches", that.listMatches)
	mux.HandleFunc("GET /matches/{id}", that.getMatch)

	return mux
}
