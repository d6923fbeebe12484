package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
)

const shutdownTimeout = 5 * time.Second

type lobby interface {
	Join(ctx context.Context, peer connectfour.Peer) error
}

type Server struct {
	logger   *slog.Logger
	lobby    lobby
	upgrader websocket.Upgrader

	maxLineLength int
	writeTimeout  time.Duration
}

func New(logger *slog.Logger, lobby lobby, maxLineLength int, writeTimeout time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "websocket_server"),
		lobby:  lobby,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		maxLineLength: maxLineLength,
		writeTimeout:  writeTimeout,
	}
}

// Start - starts WebSocket server and shuts it down once ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler serves the upgrade endpoint. Upgraded peers play under ctx, not the request context.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	// the upgrader already answered the client on failure
	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Debug("failed to upgrade connection", "error", err)
		return
	}

	// clear the deadlines http.Server set before the hijack
	_ = conn.UnderlyingConn().SetDeadline(time.Time{})

	log.Info("WebSocket connection established", "remote_addr", conn.RemoteAddr().String())

	peer := NewPeer(conn, that.maxLineLength, that.writeTimeout)
	if err = that.lobby.Join(ctx, peer); err != nil {
		log.Warn("peer rejected", "remote_addr", peer.RemoteAddr(), "error", err)
	}
}
