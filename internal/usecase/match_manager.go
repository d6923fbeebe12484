package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	List(ctx context.Context) ([]*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
}

// MatchManager keeps the registry of live matches in sync with running sessions.
// Registry failures are logged and never interrupt a match.
type MatchManager struct {
	logger    *slog.Logger
	matchRepo matchRepo
}

func NewMatchManager(logger *slog.Logger, matchRepo matchRepo) *MatchManager {
	return &MatchManager{
		logger: logger.With("component", "match_manager"),

		matchRepo: matchRepo,
	}
}

// Track stores the latest snapshot of a running match.
func (that *MatchManager) Track(ctx context.Context, match *entity.Match) {
	log := that.logger.With("method", "Track", "match_id", match.ID)

	if err := that.matchRepo.CreateOrUpdate(ctx, match); err != nil {
		log.Error("failed to save match", "error", err)
	}
}

// Forget removes a match that ended, whatever the reason.
func (that *MatchManager) Forget(ctx context.Context, matchID string) {
	log := that.logger.With("method", "Forget", "match_id", matchID)

	err := that.matchRepo.DeleteByID(ctx, matchID)
	if err != nil && !errors.Is(err, apperror.ErrMatchNotFound) {
		log.Error("failed to delete match", "error", err)
		return
	}

	log.Info("match deleted")
}

func (that *MatchManager) ListMatches(ctx context.Context) ([]*entity.Match, error) {
	matches, err := that.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, nil
}

func (that *MatchManager) GetMatch(ctx context.Context, id string) (*entity.Match, error) {
	match, err := that.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}
