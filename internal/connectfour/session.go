package connectfour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// Peer is one player's line oriented connection.
type Peer interface {
	// ReadLine blocks until a full line arrives and returns it without the terminator.
	// It returns apperror.ErrPeerGone once the stream ended and ctx.Err() when ctx is done.
	ReadLine(ctx context.Context) (string, error)
	// WriteLine sends line followed by a newline and flushes it.
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

type matchTracker interface {
	Track(ctx context.Context, match *entity.Match)
	Forget(ctx context.Context, matchID string)
}

type State int8

const (
	AwaitingReady State = iota
	InProgress
	Finished
)

func (that State) String() string {
	switch that {
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return "awaiting_ready"
	}
}

// Options bound how long a session waits on a peer. Zero waits forever.
type Options struct {
	ReadyTimeout time.Duration
	TurnTimeout  time.Duration
}

// Session referees one match between two peers. It is not safe for concurrent use;
// Run drives both peers sequentially from a single goroutine.
type Session struct {
	logger  *slog.Logger
	tracker matchTracker
	opts    Options

	match   *entity.Match
	board   *entity.Board
	peers   [2]Peer
	turn    entity.Side
	outcome entity.Outcome
	state   State
}

func NewSession(logger *slog.Logger, tracker matchTracker, id string, peerA, peerB Peer, opts Options) *Session {
	if tracker == nil {
		tracker = nopTracker{}
	}

	return &Session{
		logger:  logger.With("component", "session", "match_id", id),
		tracker: tracker,
		opts:    opts,

		match: entity.NewMatch(id, peerA.RemoteAddr(), peerB.RemoteAddr()),
		board: entity.NewBoard(),
		peers: [2]Peer{peerA, peerB},
		turn:  entity.SideA,
	}
}

func (that *Session) ID() string {
	return that.match.ID
}

func (that *Session) State() State {
	return that.state
}

func (that *Session) Outcome() entity.Outcome {
	return that.outcome
}

func (that *Session) Turn() entity.Side {
	return that.turn
}

// Run plays the match to completion. Both peers are closed when it returns.
// A nil error means an outcome was decided and announced.
func (that *Session) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	defer that.teardown(ctx)

	that.tracker.Track(ctx, that.match)
	log.Info("match created", "peer_a", that.match.Players[0].Addr, "peer_b", that.match.Players[1].Addr)

	if err := that.greet(); err != nil {
		return that.abort(ctx, err)
	}

	if err := that.awaitReady(ctx); err != nil {
		return that.abort(ctx, err)
	}

	if err := that.start(ctx); err != nil {
		return that.abort(ctx, err)
	}

	for !that.outcome.IsDecided() {
		if err := that.playTurn(ctx); err != nil {
			return that.abort(ctx, err)
		}
	}

	that.announce()

	log.Info("match finished", "outcome", that.outcome, "moves", that.match.Moves)

	return nil
}

func (that *Session) greet() error {
	for _, side := range sides {
		if err := that.write(side, "", fmt.Sprintf(msgWelcome, side.Number()), msgReadyPrompt); err != nil {
			return err
		}
	}

	return nil
}

// awaitReady reads each peer that is not ready yet until both sent the ready token.
func (that *Session) awaitReady(ctx context.Context) error {
	log := that.logger.With("method", "awaitReady")

	var ready [2]bool
	for !ready[entity.SideA] || !ready[entity.SideB] {
		for _, side := range sides {
			if ready[side] {
				continue
			}

			line, err := that.read(ctx, side, that.opts.ReadyTimeout)
			if err != nil {
				return err
			}

			if isReady(line) {
				ready[side] = true
				log.Debug("player is ready", "side", side)
				continue
			}

			if err = that.write(side, msgReadyPrompt); err != nil {
				return err
			}
		}
	}

	return nil
}

func (that *Session) start(ctx context.Context) error {
	that.state = InProgress
	that.board.Reset()
	that.turn = entity.SideA

	that.match.Status = entity.StatusOngoing
	that.snapshot(ctx)

	return that.broadcastBoard()
}

// playTurn keeps prompting the active peer until one drop succeeds.
func (that *Session) playTurn(ctx context.Context) error {
	active := that.turn

	if err := that.write(active.Next(), fmt.Sprintf(msgWaiting, active.Number())); err != nil {
		return err
	}

	for {
		if err := that.write(active, fmt.Sprintf(msgYourTurn, active.Mark())); err != nil {
			return err
		}

		line, err := that.read(ctx, active, that.opts.TurnTimeout)
		if err != nil {
			return err
		}

		column, ok := parseColumn(line)
		if !ok {
			if err = that.write(active, msgEnterNumber); err != nil {
				return err
			}
			continue
		}

		err = that.applyMove(ctx, column)
		switch {
		case err == nil:
		case errors.Is(err, apperror.ErrColumnFull):
			if err = that.write(active, msgColumnFull); err != nil {
				return err
			}
			continue
		case errors.Is(err, entity.ErrInvalidColumn):
			if err = that.write(active, msgEnterNumber); err != nil {
				return err
			}
			continue
		default:
			return err
		}

		if err = that.broadcastBoard(); err != nil {
			return err
		}

		if !that.outcome.IsDecided() {
			return that.write(active, msgOpponentsTurn)
		}

		return nil
	}
}

// applyMove drops the active mark into column and settles the outcome.
// Only the mark that just moved is checked: a move never completes the opponent's line.
func (that *Session) applyMove(ctx context.Context, column int) error {
	if that.outcome.IsDecided() {
		that.logger.Error("move applied after the outcome was decided",
			"outcome", that.outcome, "column", column)
		return apperror.ErrGameFinished
	}

	side := that.turn

	row, err := that.board.Drop(column, side.Mark())
	if err != nil {
		return fmt.Errorf("player %s drop: %w", side, err)
	}

	that.match.Moves++
	that.logger.Debug("piece dropped", "side", side, "row", row, "column", column)

	switch {
	case that.board.LineOfFourExists(side.Mark()):
		that.outcome = entity.WinFor(side)
	case that.board.IsFull():
		that.outcome = entity.Draw
	default:
		that.turn = side.Next()
	}

	that.snapshot(ctx)

	return nil
}

func (that *Session) announce() {
	that.state = Finished

	if winner, ok := that.outcome.Winner(); ok {
		that.notify(winner, msgYouWon)
		that.notify(winner.Next(), msgYouLost)
	} else {
		that.notifyAll(msgDraw)
	}

	that.notifyAll(msgPlayAgain)
}

// abort tells the peers why the match stopped early.
func (that *Session) abort(ctx context.Context, err error) error {
	var peerErr *peerError
	if errors.As(err, &peerErr) {
		switch {
		case ctx.Err() != nil:
			that.notifyAll(msgShuttingDown)
		case errors.Is(err, context.DeadlineExceeded):
			that.notify(peerErr.side, msgTimedOut)
			that.notify(peerErr.side.Next(), msgOpponentTimedOut)
		default:
			that.notify(peerErr.side.Next(), msgOpponentLeft)
		}
	}

	that.state = Finished
	that.logger.Warn("match aborted", "error", err)

	return err
}

func (that *Session) teardown(ctx context.Context) {
	log := that.logger.With("method", "teardown")

	// cleanup has to reach the registry even when the server is shutting down
	ctx = context.WithoutCancel(ctx)

	if that.outcome.IsDecided() {
		that.match.Finish(that.outcome)
		that.tracker.Track(ctx, that.match)
	}

	that.tracker.Forget(ctx, that.match.ID)

	for _, side := range sides {
		if err := that.peers[side].Close(); err != nil {
			log.Debug("failed to close peer", "side", side, "error", err)
		}
	}
}

func (that *Session) snapshot(ctx context.Context) {
	that.match.Board = that.board.Rows()
	that.match.Turn = that.turn.String()
	that.tracker.Track(ctx, that.match)
}

func (that *Session) broadcastBoard() error {
	lines := renderBoard(that.board)

	for _, side := range sides {
		if err := that.write(side, lines...); err != nil {
			return err
		}
	}

	return nil
}

func (that *Session) read(ctx context.Context, side entity.Side, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	line, err := that.peers[side].ReadLine(ctx)
	if err != nil {
		return "", &peerError{side: side, err: err}
	}

	return line, nil
}

func (that *Session) write(side entity.Side, lines ...string) error {
	for _, line := range lines {
		if err := that.peers[side].WriteLine(line); err != nil {
			return &peerError{side: side, err: err}
		}
	}

	return nil
}

// notify is a best effort write used once the match outcome no longer depends on it.
func (that *Session) notify(side entity.Side, line string) {
	if err := that.write(side, line); err != nil {
		that.logger.Debug("failed to notify player", "side", side, "error", err)
	}
}

func (that *Session) notifyAll(line string) {
	for _, side := range sides {
		that.notify(side, line)
	}
}

var sides = [2]entity.Side{entity.SideA, entity.SideB}

// peerError ties an I/O failure to the side it happened on.
type peerError struct {
	side entity.Side
	err  error
}

func (that *peerError) Error() string {
	return fmt.Sprintf("player %s: %v", that.side, that.err)
}

func (that *peerError) Unwrap() error {
	return that.err
}

type nopTracker struct{}

func (nopTracker) Track(context.Context, *entity.Match) {}

func (nopTracker) Forget(context.Context, string) {}
