package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const closeGracePeriod = time.Second

// Peer maps text frames onto lines. A frame holding several lines is split,
// and every line written goes out as its own frame.
type Peer struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	pending      []string

	closeOnce sync.Once
	closeErr  error
}

// NewPeer wraps conn. Frames larger than maxLineLength bytes end the stream with apperror.ErrLineTooLong.
func NewPeer(conn *websocket.Conn, maxLineLength int, writeTimeout time.Duration) *Peer {
	conn.SetReadLimit(int64(maxLineLength) + 2)

	return &Peer{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (that *Peer) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(that.pending) > 0 {
		return that.next(), nil
	}

	deadline, _ := ctx.Deadline()
	if err := that.conn.SetReadDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = that.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		messageType, payload, err := that.conn.ReadMessage()
		if err != nil {
			return "", that.readError(ctx, err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		text := strings.TrimSuffix(strings.ReplaceAll(string(payload), "\r\n", "\n"), "\n")
		that.pending = strings.Split(text, "\n")

		return that.next(), nil
	}
}

func (that *Peer) next() string {
	line := that.pending[0]
	that.pending = that.pending[1:]

	return line
}

func (that *Peer) readError(ctx context.Context, err error) error {
	var netErr net.Error

	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		// read deadlines only ever come from ctx
		<-ctx.Done()
		return ctx.Err()
	case errors.Is(err, websocket.ErrReadLimit):
		return apperror.ErrLineTooLong
	default:
		return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}
}

func (that *Peer) WriteLine(line string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
		}
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}

	return nil
}

// Close sends a normal closure frame before dropping the connection.
func (that *Peer) Close() error {
	that.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = that.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGracePeriod))

		that.closeErr = that.conn.Close()
	})

	return that.closeErr
}

func (that *Peer) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
