package doctor_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	blobmock "github.com/KirkDiggler/initiative-tracker/internal/repositories/blob/mock"
	"github.com/KirkDiggler/initiative-tracker/internal/services/doctor"
	"github.com/KirkDiggler/initiative-tracker/internal/testutils"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *blob.InMemoryRepository
	service doctor.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = blob.NewInMemory()

	svc, err := doctor.NewService(&doctor.Config{Repository: s.repo})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceTestSuite) seed(key string, raw []byte) {
	_, err := s.repo.Set(s.ctx, blob.SetInput{Key: key, Value: raw})
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) seedJSON(key string, v any) {
	raw, err := json.Marshal(v)
	s.Require().NoError(err)
	s.seed(key, raw)
}

func (s *ServiceTestSuite) stored(key string) string {
	output, err := s.repo.Get(s.ctx, blob.GetInput{Key: key})
	s.Require().NoError(err)
	return string(output.Value)
}

func (s *ServiceTestSuite) TestConfigValidation() {
	svc, err := doctor.NewService(&doctor.Config{})
	s.Nil(svc)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestCheckEmptyStorage() {
	out, err := s.service.Check(s.ctx, nil)
	s.Require().NoError(err)

	s.Require().Len(out.Reports, 3)
	for i, key := range doctor.KnownKeys() {
		s.Equal(key, out.Reports[i].Key)
		s.Equal(doctor.StatusMissing, out.Reports[i].Status)
	}
	s.True(out.Healthy())
}

func (s *ServiceTestSuite) TestCheckReportsEachProblem() {
	roster := testutils.CreateTestRoster()
	roster = append(roster, roster[0])
	s.seedJSON(blob.KeyCharacters, roster)
	s.seed(blob.KeyVehicles, []byte(`[{"id":`))
	s.seedJSON(blob.KeySettings, entities.Settings{ShowDebugInfo: false})

	out, err := s.service.Check(s.ctx, &doctor.CheckInput{})
	s.Require().NoError(err)
	s.False(out.Healthy())

	chars, vehicles, settings := out.Reports[0], out.Reports[1], out.Reports[2]

	s.Equal(doctor.StatusDuplicateIDs, chars.Status)
	s.Equal(4, chars.Count)
	s.Equal("1 records repeat an earlier id", chars.Detail)

	s.Equal(doctor.StatusMalformed, vehicles.Status)
	s.Equal(7, vehicles.Bytes)
	s.NotEmpty(vehicles.Detail)

	s.Equal(doctor.StatusOK, settings.Status)
}

func (s *ServiceTestSuite) TestCheckSelectedKeys() {
	out, err := s.service.Check(s.ctx, &doctor.CheckInput{Keys: []string{blob.KeySettings}})
	s.Require().NoError(err)
	s.Require().Len(out.Reports, 1)
	s.Equal(blob.KeySettings, out.Reports[0].Key)

	_, err = s.service.Check(s.ctx, &doctor.CheckInput{Keys: []string{"encounter"}})
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), `unknown key "encounter"`)
}

func (s *ServiceTestSuite) TestRepair() {
	roster := testutils.CreateTestRoster()
	duplicate := roster[1]
	duplicate.Name = "Impostor"
	s.seedJSON(blob.KeyCharacters, append(roster, duplicate))
	s.seed(blob.KeyVehicles, []byte(`not json`))
	s.seed(blob.KeySettings, []byte(`{"showDebugInfo":"yes"}`))

	out, err := s.service.Repair(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(out.Repaired, 3)

	var chars []entities.Character
	s.Require().NoError(json.Unmarshal([]byte(s.stored(blob.KeyCharacters)), &chars))
	s.Equal(roster, chars)

	s.Equal("[]", s.stored(blob.KeyVehicles))
	s.JSONEq(`{"showDebugInfo":true}`, s.stored(blob.KeySettings))

	check, err := s.service.Check(s.ctx, nil)
	s.Require().NoError(err)
	s.True(check.Healthy())
}

func (s *ServiceTestSuite) TestRepairLeavesHealthyAndMissingKeys() {
	s.seedJSON(blob.KeyCharacters, testutils.CreateTestRoster())

	out, err := s.service.Repair(s.ctx, &doctor.RepairInput{})
	s.Require().NoError(err)
	s.Empty(out.Repaired)

	_, err = s.repo.Get(s.ctx, blob.GetInput{Key: blob.KeyVehicles})
	s.True(errors.IsNotFound(err))
}

func (s *ServiceTestSuite) TestBackendFailures() {
	ctrl := gomock.NewController(s.T())
	mockRepo := blobmock.NewMockRepository(ctrl)

	svc, err := doctor.NewService(&doctor.Config{Repository: mockRepo})
	s.Require().NoError(err)

	mockRepo.EXPECT().
		Get(s.ctx, blob.GetInput{Key: blob.KeyCharacters}).
		Return(nil, errors.Unavailable("redis is down"))

	_, err = svc.Check(s.ctx, &doctor.CheckInput{Keys: []string{blob.KeyCharacters}})
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to read characters")
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))

	mockRepo.EXPECT().
		Get(s.ctx, blob.GetInput{Key: blob.KeyVehicles}).
		Return(&blob.GetOutput{Value: []byte(`{`)}, nil)
	mockRepo.EXPECT().
		Set(s.ctx, blob.SetInput{Key: blob.KeyVehicles, Value: []byte("[]")}).
		Return(nil, errors.Unavailable("redis is down"))

	_, err = svc.Repair(s.ctx, &doctor.RepairInput{Keys: []string{blob.KeyVehicles}})
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to repair vehicles")
}
