package raidboss_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/repositories/raidboss"
	"github.com/questbound/quest-api/internal/testutils"
)

const testWeek = "2026-W35"

type RedisRaidBossTestSuite struct {
	suite.Suite
	repo    raidboss.Repository
	ctx     context.Context
	cleanup func()
}

func (s *RedisRaidBossTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := raidboss.NewRedisRepository(&raidboss.Config{
		Client: client,
		Clock:  clock.NewFixed(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRaidBossTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRaidBossTestSuite) newBoss() *entities.RaidBoss {
	return &entities.RaidBoss{
		WeekKey:     testWeek,
		Name:        "Maw of the Deep",
		PrimaryStat: entities.StatStrength,
		Difficulty:  120,
		MaxHP:       500,
		HP:          500,
	}
}

func (s *RedisRaidBossTestSuite) TestEnsureIsFirstWriterWins() {
	_, err := s.repo.Ensure(s.ctx, raidboss.EnsureInput{Boss: s.newBoss()})
	s.Require().NoError(err)

	// Damage the pool, then try to re-initialize
	_, err = s.repo.ApplyDamage(s.ctx, raidboss.ApplyDamageInput{
		WeekKey:    testWeek,
		Damage:     100,
		AttackerID: "char_1",
	})
	s.Require().NoError(err)

	ensured, err := s.repo.Ensure(s.ctx, raidboss.EnsureInput{Boss: s.newBoss()})
	s.Require().NoError(err)
	s.Equal(400, ensured.Boss.HP, "re-ensure must not reset a damaged pool")
}

func (s *RedisRaidBossTestSuite) TestApplyDamageFloorsAtZero() {
	_, err := s.repo.Ensure(s.ctx, raidboss.EnsureInput{Boss: s.newBoss()})
	s.Require().NoError(err)

	out, err := s.repo.ApplyDamage(s.ctx, raidboss.ApplyDamageInput{
		WeekKey:    testWeek,
		Damage:     9999,
		AttackerID: "char_1",
	})
	s.Require().NoError(err)
	s.Equal(0, out.Boss.HP, "boss HP never goes below zero")
	s.True(out.KillingBlow)
	s.Equal("char_1", out.Boss.DefeatedBy)
	s.NotNil(out.Boss.DefeatedAt)
}

func (s *RedisRaidBossTestSuite) TestApplyDamageAfterDefeatIsNoop() {
	_, err := s.repo.Ensure(s.ctx, raidboss.EnsureInput{Boss: s.newBoss()})
	s.Require().NoError(err)

	_, err = s.repo.ApplyDamage(s.ctx, raidboss.ApplyDamageInput{
		WeekKey: testWeek, Damage: 9999, AttackerID: "char_1",
	})
	s.Require().NoError(err)

	out, err := s.repo.ApplyDamage(s.ctx, raidboss.ApplyDamageInput{
		WeekKey: testWeek, Damage: 50, AttackerID: "char_2",
	})
	s.Require().NoError(err)
	s.False(out.KillingBlow)
	s.Equal("char_1", out.Boss.DefeatedBy, "killing blow credit is not reassigned")
}

func (s *RedisRaidBossTestSuite) TestApplyDamageMissingBoss() {
	_, err := s.repo.ApplyDamage(s.ctx, raidboss.ApplyDamageInput{
		WeekKey: "1999-W01", Damage: 10, AttackerID: "char_1",
	})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRaidBossTestSuite) TestIncrAttackCount() {
	for i := 1; i <= 3; i++ {
		out, err := s.repo.IncrAttackCount(s.ctx, raidboss.IncrAttackCountInput{
			WeekKey:     testWeek,
			Day:         "2026-08-29",
			CharacterID: "char_1",
		})
		s.Require().NoError(err)
		s.Equal(i, out.Attacks)
	}

	// A different day starts a fresh counter
	out, err := s.repo.IncrAttackCount(s.ctx, raidboss.IncrAttackCountInput{
		WeekKey:     testWeek,
		Day:         "2026-08-30",
		CharacterID: "char_1",
	})
	s.Require().NoError(err)
	s.Equal(1, out.Attacks)
}

func TestRedisRaidBossTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRaidBossTestSuite))
}
