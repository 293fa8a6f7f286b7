package raidboss

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
	// Key patterns: raid_boss:{week} and raid_boss:attacks:{week}:{day}:{character_id}
	bossKeyPrefix    = "raid_boss:"
	attacksKeyPrefix = "raid_boss:attacks:"

	// Week-scoped state ages out shortly after the week ends
	bossTTL          = 14 * 24 * time.Hour
	attackCounterTTL = 48 * time.Hour

	// Error messages
	errBossNil      = "boss cannot be nil"
	errWeekKeyEmpty = "week key cannot be empty"
	errAttackerID   = "attacker ID cannot be empty"
)

// Config holds the configuration for the Redis raid boss repository
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

// NewRedisRepository creates a new Redis repository for raid boss state
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

func (r *redisRepository) bossKey(weekKey string) string {
	return bossKeyPrefix + weekKey
}

func (r *redisRepository) Ensure(ctx context.Context, input EnsureInput) (*EnsureOutput, error) {
	if input.Boss == nil {
		return nil, errors.InvalidArgument(errBossNil)
	}
	if input.Boss.WeekKey == "" {
		return nil, errors.InvalidArgument(errWeekKeyEmpty)
	}

	data, err := json.Marshal(input.Boss)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal raid boss")
	}

	key := r.bossKey(input.Boss.WeekKey)

	// SetNX so a racing initializer cannot reset an already-damaged pool
	set, err := r.client.SetNX(ctx, key, data, bossTTL).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize raid boss")
	}
	if set {
		return &EnsureOutput{Boss: input.Boss}, nil
	}

	getOutput, err := r.Get(ctx, GetInput{WeekKey: input.Boss.WeekKey})
	if err != nil {
		return nil, err
	}
	return &EnsureOutput{Boss: getOutput.Boss}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.WeekKey == "" {
		return nil, errors.InvalidArgument(errWeekKeyEmpty)
	}

	result, err := r.client.Get(ctx, r.bossKey(input.WeekKey)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no raid boss for week %s", input.WeekKey)
		}
		return nil, errors.Wrapf(err, "failed to get raid boss")
	}

	var boss entities.RaidBoss
	if err := json.Unmarshal([]byte(result), &boss); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "raid boss record is corrupt")
	}

	return &GetOutput{Boss: &boss}, nil
}

func (r *redisRepository) ApplyDamage(ctx context.Context, input ApplyDamageInput) (*ApplyDamageOutput, error) {
	if input.WeekKey == "" {
		return nil, errors.InvalidArgument(errWeekKeyEmpty)
	}
	if input.AttackerID == "" {
		return nil, errors.InvalidArgument(errAttackerID)
	}
	if input.Damage < 0 {
		return nil, errors.InvalidArgument("damage cannot be negative")
	}

	key := r.bossKey(input.WeekKey)
	var out *ApplyDamageOutput

	// Optimistic transaction: re-read and retry if another attacker
	// modified the pool between our read and write.
	txn := func(tx *redis.Tx) error {
		result, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFoundf("no raid boss for week %s", input.WeekKey)
			}
			return errors.Wrapf(err, "failed to get raid boss")
		}

		var boss entities.RaidBoss
		if err := json.Unmarshal([]byte(result), &boss); err != nil {
			return errors.WrapWithCode(err, errors.CodeDataLoss, "raid boss record is corrupt")
		}

		killingBlow := false
		if !boss.Defeated() {
			boss.HP -= input.Damage
			if boss.HP <= 0 {
				boss.HP = 0
				killingBlow = true
				boss.DefeatedBy = input.AttackerID
				now := r.clock.Now()
				boss.DefeatedAt = &now
			}
		}

		data, err := json.Marshal(&boss)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal raid boss")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		out = &ApplyDamageOutput{Boss: &boss, KillingBlow: killingBlow}
		return nil
	}

	for attempt := 0; attempt < 5; attempt++ {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return out, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, errors.Wrap(err, "failed to apply raid damage")
	}

	return nil, errors.Unavailable("raid boss is under heavy contention, try again")
}

func (r *redisRepository) IncrAttackCount(ctx context.Context, input IncrAttackCountInput) (*IncrAttackCountOutput, error) {
	if input.WeekKey == "" {
		return nil, errors.InvalidArgument(errWeekKeyEmpty)
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errAttackerID)
	}
	if input.Day == "" {
		return nil, errors.InvalidArgument("day cannot be empty")
	}

	key := fmt.Sprintf("%s%s:%s:%s", attacksKeyPrefix, input.WeekKey, input.Day, input.CharacterID)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, attackCounterTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to increment attack count")
	}

	return &IncrAttackCountOutput{Attacks: int(incr.Val())}, nil
}
