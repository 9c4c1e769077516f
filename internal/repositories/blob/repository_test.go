package blob_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	mockclock "github.com/KirkDiggler/initiative-tracker/internal/pkg/clock/mock"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	"github.com/KirkDiggler/initiative-tracker/internal/testutils"
)

// RepositoryContractSuite runs the same behavior checks against every
// backend
type RepositoryContractSuite struct {
	suite.Suite
	newRepo func(t *testing.T) (blob.Repository, func())
	repo    blob.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RepositoryContractSuite) SetupTest() {
	s.repo, s.cleanup = s.newRepo(s.T())
	s.ctx = context.Background()
}

func (s *RepositoryContractSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RepositoryContractSuite) TestGetMissingKeyIsNotFound() {
	output, err := s.repo.Get(s.ctx, blob.GetInput{Key: blob.KeyCharacters})

	s.Nil(output)
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
	s.Equal(blob.KeyCharacters, errors.GetMeta(err)["key"])
}

func (s *RepositoryContractSuite) TestSetThenGet() {
	value := []byte(`[{"id":"1","name":"Goblin"}]`)

	_, err := s.repo.Set(s.ctx, blob.SetInput{Key: blob.KeyCharacters, Value: value})
	s.Require().NoError(err)

	output, err := s.repo.Get(s.ctx, blob.GetInput{Key: blob.KeyCharacters})
	s.Require().NoError(err)
	s.Equal(value, output.Value)
}

func (s *RepositoryContractSuite) TestSetOverwrites() {
	_, err := s.repo.Set(s.ctx, blob.SetInput{Key: blob.KeyVehicles, Value: []byte(`[1]`)})
	s.Require().NoError(err)
	_, err = s.repo.Set(s.ctx, blob.SetInput{Key: blob.KeyVehicles, Value: []byte(`[]`)})
	s.Require().NoError(err)

	output, err := s.repo.Get(s.ctx, blob.GetInput{Key: blob.KeyVehicles})
	s.Require().NoError(err)
	s.Equal([]byte(`[]`), output.Value)
}

func (s *RepositoryContractSuite) TestKeysAreIndependent() {
	_, err := s.repo.Set(s.ctx, blob.SetInput{Key: blob.KeySettings, Value: []byte(`{"showDebugInfo":false}`)})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, blob.GetInput{Key: blob.KeyCharacters})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryContractSuite) TestEmptyKeyRejected() {
	_, err := s.repo.Get(s.ctx, blob.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Set(s.ctx, blob.SetInput{Value: []byte(`[]`)})
	s.True(errors.IsInvalidArgument(err))
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryContractSuite{
		newRepo: func(t *testing.T) (blob.Repository, func()) {
			return blob.NewInMemory(), nil
		},
	})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryContractSuite{
		newRepo: func(t *testing.T) (blob.Repository, func()) {
			client, _, cleanup := testutils.CreateTestRedisClient(t)
			repo, err := blob.NewRedis(&blob.RedisConfig{Client: client})
			if err != nil {
				t.Fatalf("failed to create redis repository: %v", err)
			}
			return repo, cleanup
		},
	})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryContractSuite{
		newRepo: func(t *testing.T) (blob.Repository, func()) {
			repo, err := blob.NewSQLite(&blob.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "tracker.db"),
			})
			if err != nil {
				t.Fatalf("failed to open sqlite repository: %v", err)
			}
			return repo, func() { _ = repo.Close() }
		},
	})
}

type RedisRepositoryTestSuite struct {
	suite.Suite
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestConfigValidation() {
	repo, err := blob.NewRedis(nil)
	s.Nil(repo)
	s.True(errors.IsInvalidArgument(err))

	repo, err = blob.NewRedis(&blob.RedisConfig{})
	s.Nil(repo)
	s.Contains(err.Error(), "client cannot be nil")
}

func (s *RedisRepositoryTestSuite) TestKeysArePrefixed() {
	client, mr, cleanup := testutils.CreateTestRedisClient(s.T())
	defer cleanup()

	repo, err := blob.NewRedis(&blob.RedisConfig{Client: client, KeyPrefix: "table1:"})
	s.Require().NoError(err)

	_, err = repo.Set(context.Background(), blob.SetInput{Key: blob.KeyVehicles, Value: []byte(`[]`)})
	s.Require().NoError(err)

	stored, err := mr.Get("table1:vehicles")
	s.Require().NoError(err)
	s.Equal("[]", stored)
	s.False(mr.Exists("vehicles"))
}

func (s *RedisRepositoryTestSuite) TestDefaultPrefix() {
	client, mr, cleanup := testutils.CreateTestRedisClient(s.T())
	defer cleanup()

	repo, err := blob.NewRedis(&blob.RedisConfig{Client: client})
	s.Require().NoError(err)

	_, err = repo.Set(context.Background(), blob.SetInput{Key: blob.KeySettings, Value: []byte(`{}`)})
	s.Require().NoError(err)

	s.True(mr.Exists(blob.DefaultRedisKeyPrefix + blob.KeySettings))
}

func (s *RedisRepositoryTestSuite) TestServerErrorIsInternal() {
	client, mr, cleanup := testutils.CreateTestRedisClient(s.T())
	defer cleanup()

	repo, err := blob.NewRedis(&blob.RedisConfig{Client: client})
	s.Require().NoError(err)

	mr.SetError("server is down")

	_, err = repo.Get(context.Background(), blob.GetInput{Key: blob.KeyCharacters})
	s.Require().Error(err)
	s.True(errors.IsInternal(err))

	_, err = repo.Set(context.Background(), blob.SetInput{Key: blob.KeyCharacters, Value: []byte(`[]`)})
	s.True(errors.IsInternal(err))
}

type SQLiteRepositoryTestSuite struct {
	suite.Suite
}

func TestSQLiteRepositorySuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) TestPathRequired() {
	repo, err := blob.NewSQLite(&blob.SQLiteConfig{Path: "  "})
	s.Nil(repo)
	s.True(errors.IsInvalidArgument(err))

	repo, err = blob.NewSQLite(nil)
	s.Nil(repo)
	s.True(errors.IsInvalidArgument(err))
}

func (s *SQLiteRepositoryTestSuite) TestSurvivesReopen() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	clk := mockclock.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	path := filepath.Join(s.T().TempDir(), "tracker.db")

	first, err := blob.NewSQLite(&blob.SQLiteConfig{Path: path, Clock: clk})
	s.Require().NoError(err)
	_, err = first.Set(context.Background(), blob.SetInput{Key: blob.KeyCharacters, Value: []byte(`[{"id":"a"}]`)})
	s.Require().NoError(err)
	s.Require().NoError(first.Close())

	second, err := blob.NewSQLite(&blob.SQLiteConfig{Path: path})
	s.Require().NoError(err)
	defer func() { _ = second.Close() }()

	output, err := second.Get(context.Background(), blob.GetInput{Key: blob.KeyCharacters})
	s.Require().NoError(err)
	s.Equal([]byte(`[{"id":"a"}]`), output.Value)
}

func (s *SQLiteRepositoryTestSuite) TestCloseNil() {
	var repo *blob.SQLiteRepository
	s.NoError(repo.Close())
}
