package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/repositories/character"
	"github.com/questbound/quest-api/internal/testutils"
)

type RedisCharacterTestSuite struct {
	suite.Suite
	repo    character.Repository
	clock   *clock.Fixed
	ctx     context.Context
	cleanup func()
}

func (s *RedisCharacterTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))

	repo, err := character.NewRedis(&character.RedisConfig{
		Client: client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisCharacterTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisCharacterTestSuite) TestCreateAndGet() {
	char := testutils.NewTestCharacter("char_1")

	created, err := s.repo.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), created.Character.UpdatedAt)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("Testil the Brave", got.Character.Name)
	s.Equal(char.Stats, got.Character.Stats)
}

func (s *RedisCharacterTestSuite) TestCreateDuplicate() {
	char := testutils.NewTestCharacter("char_1")

	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, character.CreateInput{Character: char})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisCharacterTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "nope"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisCharacterTestSuite) TestUpdate() {
	char := testutils.NewTestCharacter("char_1")
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)

	char.Gold = 999
	char.Level = 6

	_, err = s.repo.Update(s.ctx, character.UpdateInput{Character: char})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(999, got.Character.Gold)
	s.Equal(6, got.Character.Level)
}

func (s *RedisCharacterTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, character.UpdateInput{Character: testutils.NewTestCharacter("ghost")})
	s.True(errors.IsNotFound(err))
}

func (s *RedisCharacterTestSuite) TestListByPlayerID() {
	a := testutils.NewTestCharacter("char_a")
	b := testutils.NewTestCharacter("char_b")
	b.PlayerID = a.PlayerID

	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: a})
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, character.CreateInput{Character: b})
	s.Require().NoError(err)

	listed, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: a.PlayerID})
	s.Require().NoError(err)
	s.Len(listed.Characters, 2)
}

func (s *RedisCharacterTestSuite) TestDeleteCleansIndex() {
	char := testutils.NewTestCharacter("char_1")
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: "char_1"})
	s.Require().NoError(err)

	listed, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: char.PlayerID})
	s.Require().NoError(err)
	s.Empty(listed.Characters)
}

func TestRedisCharacterTestSuite(t *testing.T) {
	suite.Run(t, new(RedisCharacterTestSuite))
}
