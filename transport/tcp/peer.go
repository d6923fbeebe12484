package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

// Peer speaks newline terminated text over a single connection.
type Peer struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewPeer wraps conn. Lines longer than maxLineLength bytes end the stream with apperror.ErrLineTooLong.
func NewPeer(conn net.Conn, maxLineLength int, writeTimeout time.Duration) *Peer {
	scanner := bufio.NewScanner(conn)
	// room for the CRLF terminator
	scanner.Buffer(make([]byte, 0, min(maxLineLength+2, bufio.MaxScanTokenSize)), maxLineLength+2)

	return &Peer{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

func (that *Peer) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	deadline, _ := ctx.Deadline()
	if err := that.conn.SetReadDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}

	// a cancelled context interrupts the blocked read
	stop := context.AfterFunc(ctx, func() {
		_ = that.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if that.scanner.Scan() {
		return strings.TrimSuffix(that.scanner.Text(), "\r"), nil
	}

	err := that.scanner.Err()
	switch {
	case err == nil:
		return "", apperror.ErrPeerGone
	case errors.Is(err, os.ErrDeadlineExceeded):
		// read deadlines only ever come from ctx
		<-ctx.Done()
		return "", ctx.Err()
	case errors.Is(err, bufio.ErrTooLong):
		return "", apperror.ErrLineTooLong
	default:
		return "", fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}
}

func (that *Peer) WriteLine(line string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
		}
	}

	if _, err := that.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}

	if err := that.writer.Flush(); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrPeerGone, err)
	}

	return nil
}

func (that *Peer) Close() error {
	that.closeOnce.Do(func() {
		that.closeErr = that.conn.Close()
	})

	return that.closeErr
}

func (that *Peer) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
