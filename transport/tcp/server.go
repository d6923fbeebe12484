package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
)

type lobby interface {
	Join(ctx context.Context, peer connectfour.Peer) error
}

type Server struct {
	logger *slog.Logger
	lobby  lobby

	maxLineLength int
	writeTimeout  time.Duration
}

func New(logger *slog.Logger, lobby lobby, maxLineLength int, writeTimeout time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "tcp_server"),
		lobby:  lobby,

		maxLineLength: maxLineLength,
		writeTimeout:  writeTimeout,
	}
}

// Start - listens on port and serves until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve accepts connections from listener and hands each one to the lobby.
// It closes listener and returns nil once ctx is done.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve", "addr", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	log.Info("accepting connections")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Info("listener closed")
				return nil
			}

			return fmt.Errorf("failed to accept connection: %w", err)
		}

		log.Debug("connection accepted", "remote_addr", conn.RemoteAddr().String())

		peer := NewPeer(conn, that.maxLineLength, that.writeTimeout)
		if err = that.lobby.Join(ctx, peer); err != nil {
			log.Warn("peer rejected", "remote_addr", peer.RemoteAddr(), "error", err)
		}
	}
}
