package runsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/pkg/clock"
	redisclient "github.com/questbound/quest-api/internal/redis"
)

const (
	// Key patterns: run_session:{id} and run_session:active:{character_id}:{mode}
	sessionKeyPrefix = "run_session:"
	activeKeyPrefix  = "run_session:active:"

	// Terminal sessions are kept for history, then aged out
	terminalSessionTTL = 30 * 24 * time.Hour

	// Error messages
	errSessionNil     = "session cannot be nil"
	errSessionIDEmpty = "session ID cannot be empty"
	errCharIDEmpty    = "character ID cannot be empty"
	errModeEmpty      = "run mode cannot be empty"
)

// Config holds the configuration for the Redis run session repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for run sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.Session.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharIDEmpty)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal run session")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(input.Session.ID), data, 0)
	if input.Session.Status == entities.StatusInProgress {
		pipe.Set(ctx, r.activeKey(input.Session.CharacterID, input.Session.Mode), input.Session.ID, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to store run session")
	}

	return &CreateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	result, err := r.client.Get(ctx, r.sessionKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("run session %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get run session")
	}

	var session entities.RunSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		// A record we wrote but can no longer read is unrecoverable;
		// callers must treat the run as lost rather than guess.
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "run session record is corrupt")
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharIDEmpty)
	}
	if input.Mode == "" {
		return nil, errors.InvalidArgument(errModeEmpty)
	}

	activeKey := r.activeKey(input.CharacterID, input.Mode)
	sessionID, err := r.client.Get(ctx, activeKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no active %s run for character %s", input.Mode, input.CharacterID)
		}
		return nil, errors.Wrapf(err, "failed to read active run pointer")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: sessionID})
	if err != nil {
		// Dangling pointer: clear it so the character can start fresh
		if errors.IsNotFound(err) {
			r.client.Del(ctx, activeKey)
		}
		return nil, err
	}

	return &GetActiveOutput{Session: getOutput.Session}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := r.sessionKey(input.Session.ID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check run session existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("run session %s not found", input.Session.ID)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal run session")
	}

	pipe := r.client.TxPipeline()
	if input.Session.Status.Terminal() {
		pipe.Set(ctx, key, data, terminalSessionTTL)
		pipe.Del(ctx, r.activeKey(input.Session.CharacterID, input.Session.Mode))
	} else {
		pipe.Set(ctx, key, data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update run session")
	}

	return &UpdateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	getOutput, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}
	session := getOutput.Session

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(input.ID))
	pipe.Del(ctx, r.activeKey(session.CharacterID, session.Mode))

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete run session")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *redisRepository) activeKey(characterID string, mode entities.RunMode) string {
	return fmt.Sprintf("%s%s:%s", activeKeyPrefix, characterID, mode)
}
