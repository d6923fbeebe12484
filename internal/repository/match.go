package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	matchKeyPrefix = "match:"
	matchIndexKey  = "matches"
)

type MatchRepository interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	List(ctx context.Context) ([]*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository stores live match snapshots. Each snapshot expires after ttl
// so matches of a crashed process do not linger; zero keeps them until deleted.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMatch) CreateOrUpdate(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, matchKey(match.ID), matchJSON, that.ttl)
		pipe.SAdd(ctx, matchIndexKey, match.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	response, err := that.client.Get(ctx, matchKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	var existingMatch entity.Match
	if err = json.Unmarshal([]byte(response), &existingMatch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &existingMatch, nil
}

// List returns every live match. Index entries whose snapshot already expired are pruned.
func (that *dbMatch) List(ctx context.Context) ([]*entity.Match, error) {
	ids, err := that.client.SMembers(ctx, matchIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list match ids: %w", err)
	}

	matches := make([]*entity.Match, 0, len(ids))
	if len(ids) == 0 {
		return matches, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, matchKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	var expired []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}

		var match entity.Match
		if err = json.Unmarshal([]byte(raw), &match); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match %s: %w", ids[i], err)
		}

		matches = append(matches, &match)
	}

	if len(expired) > 0 {
		if err = that.client.SRem(ctx, matchIndexKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired matches: %w", err)
		}
	}

	return matches, nil
}

func (that *dbMatch) DeleteByID(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, matchKey(id))
		pipe.SRem(ctx, matchIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete match by id: %w", err)
	}

	if deleted.Val() == 0 {
		return apperror.ErrMatchNotFound
	}

	return nil
}

func matchKey(id string) string {
	return matchKeyPrefix + id
}
