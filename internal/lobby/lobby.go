package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	msgWaitingForOpponent = "Waiting for an opponent to connect..."
	msgOpponentFound      = "Opponent found!"
)

var ErrLobbyClosed = errors.New("lobby is closed")

type matchTracker interface {
	Track(ctx context.Context, match *entity.Match)
	Forget(ctx context.Context, matchID string)
}

// waitingPeer is a peer that has been greeted and nothing else writes to.
type waitingPeer struct {
	ctx  context.Context
	peer connectfour.Peer
}

// Lobby pairs incoming peers in arrival order and runs one session per pair.
// The peer that arrived first plays side A.
type Lobby struct {
	logger  *slog.Logger
	tracker matchTracker
	opts    connectfour.Options

	mu      sync.Mutex
	waiting *waitingPeer
	closed  bool

	wg sync.WaitGroup
}

func New(logger *slog.Logger, tracker matchTracker, opts connectfour.Options) *Lobby {
	return &Lobby{
		logger:  logger.With("component", "lobby"),
		tracker: tracker,
		opts:    opts,
	}
}

// Join hands peer over to the lobby. It never blocks on a match: once a second
// peer arrives the pair is played on its own goroutine bound to ctx.
// A peer is written to by at most one goroutine at a time: it only becomes
// pairable after its waiting notice went out.
func (that *Lobby) Join(ctx context.Context, peer connectfour.Peer) error {
	log := that.logger.With("method", "Join", "addr", peer.RemoteAddr())

	greeted := false

	for {
		that.mu.Lock()
		if that.closed {
			that.mu.Unlock()
			_ = peer.Close()
			return ErrLobbyClosed
		}

		opponent := that.waiting
		if opponent == nil && greeted {
			that.waiting = &waitingPeer{ctx: ctx, peer: peer}
			that.mu.Unlock()

			log.Info("peer is waiting for an opponent")
			return nil
		}

		that.waiting = nil
		that.mu.Unlock()

		if opponent == nil {
			if err := peer.WriteLine(msgWaitingForOpponent); err != nil {
				_ = peer.Close()
				return fmt.Errorf("failed to greet peer: %w", err)
			}

			greeted = true
			continue
		}

		if !that.alive(opponent) {
			log.Info("waiting peer is gone", "opponent", opponent.peer.RemoteAddr())
			_ = opponent.peer.Close()
			continue
		}

		return that.play(ctx, opponent.peer, peer)
	}
}

// alive weeds out a waiting peer whose connection already failed.
// It cannot spot a peer that left without the transport noticing yet.
func (that *Lobby) alive(waiting *waitingPeer) bool {
	if waiting.ctx.Err() != nil {
		return false
	}

	return waiting.peer.WriteLine(msgOpponentFound) == nil
}

func (that *Lobby) play(ctx context.Context, peerA, peerB connectfour.Peer) error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		_ = peerA.Close()
		_ = peerB.Close()
		return ErrLobbyClosed
	}
	that.wg.Add(1)
	that.mu.Unlock()

	id := uuid.NewString()
	session := connectfour.NewSession(that.logger, that.tracker, id, peerA, peerB, that.opts)

	that.logger.Info("peers paired", "match_id", id, "peer_a", peerA.RemoteAddr(), "peer_b", peerB.RemoteAddr())

	go func() {
		defer that.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				that.logger.Error("match panicked", "match_id", id, "panic", r)
				_ = peerA.Close()
				_ = peerB.Close()
			}
		}()

		if err := session.Run(ctx); err != nil {
			that.logger.Info("match ended early", "match_id", id, "error", err)
		}
	}()

	return nil
}

// Close rejects further peers and releases the one still waiting for an opponent.
func (that *Lobby) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}
	that.closed = true

	if that.waiting != nil {
		_ = that.waiting.peer.Close()
		that.waiting = nil
	}
}

// Wait blocks until every started session returned.
func (that *Lobby) Wait() {
	that.wg.Wait()
}
