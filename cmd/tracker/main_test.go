package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-tracker/internal/app"
	"github.com/KirkDiggler/initiative-tracker/internal/config"
	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/services/doctor"
	doctormock "github.com/KirkDiggler/initiative-tracker/internal/services/doctor/mock"
	"github.com/KirkDiggler/initiative-tracker/internal/testutils"
)

type fixedRoller struct {
	roll int
}

func (f *fixedRoller) Roll(_ int) (int, error) { return f.roll, nil }
func (f *fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = f.roll
	}
	return out, nil
}

type CLITestSuite struct {
	suite.Suite
	app *app.App
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	a, err := app.New(&app.Config{
		Storage: &config.Config{
			Backend:      config.BackendMemory,
			LogLevel:     "error",
			WriteTimeout: time.Second,
		},
		Roller: &fixedRoller{roll: 11},
	})
	s.Require().NoError(err)
	s.app = a
}

func (s *CLITestSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *CLITestSuite) session(script ...string) string {
	var out bytes.Buffer
	err := runSession(context.Background(), s.app, strings.NewReader(strings.Join(script, "\n")), &out)
	s.Require().NoError(err)
	return out.String()
}

func (s *CLITestSuite) TestSessionGoblinAmbush() {
	s.app.Characters.Add(testutils.CreateTestNPC("", "Goblin", 2))
	s.app.Characters.Add(testutils.CreateTestPlayer("", "Thorin", 1))
	roster := s.app.Characters.Get()
	thorinID := roster[1].ID

	out := s.session(
		"start Goblin Ambush",
		"init "+thorinID+" 14",
		"quit",
		"start ignored after quit",
	)

	s.Contains(out, "== Goblin Ambush [")
	s.Regexp(`1\. Goblin\s+13`, out)
	s.Contains(out, "waiting on: Thorin ("+thorinID+")")
	s.Regexp(`1\. Thorin\s+15`, out)

	enc, ok := s.app.Encounter.Current().Get()
	s.Require().True(ok)
	s.Equal("Goblin Ambush", enc.Name)
	s.Len(enc.Initiative, 2)
}

func (s *CLITestSuite) TestSessionRejectsBadInput() {
	out := s.session(
		"init someone 12",
		"start",
		"start Skirmish",
		"init someone 25",
		"init someone",
		"dance",
	)

	s.Contains(out, "no active encounter")
	s.Contains(out, "usage: start <name>")
	s.Contains(out, "roll must be a number from 1 to 20")
	s.Contains(out, "usage: init <characterId> <roll>")
	s.Contains(out, `unknown command "dance"`)
}

func (s *CLITestSuite) TestSessionEndAndDebugOff() {
	s.app.Settings.SetShowDebugInfo(false)

	out := s.session("start Bridge", "end", "order")

	s.Contains(out, "== Bridge ==\n")
	s.NotContains(out, "d20")
	s.True(s.app.Encounter.Current().IsNone())
	s.Equal(3, strings.Count(out, "No active encounter"))
}

func (s *CLITestSuite) TestSessionRolls() {
	s.app.Characters.Add(testutils.CreateTestNPC("", "Goblin", 2))
	goblinID := s.app.Characters.Get()[0].ID

	out := s.session(
		"roll 2d6 + 3",
		"roll lots",
		"attack "+goblinID+" scimitar",
		"attack "+goblinID+" bite",
	)

	s.Contains(out, "2d6+3: [11 11] +3 = 25")
	s.Contains(out, "could not roll")
	s.Contains(out, "Goblin attacks with Scimitar: 15 to hit (d20 11 +4), 13 damage [11]")
	s.Contains(out, "Goblin has no attack named bite")
}

func (s *CLITestSuite) TestSessionStopsWhenContextDone() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	s.NoError(runSession(ctx, s.app, strings.NewReader("start Never\n"), &out))
	s.True(s.app.Encounter.Current().IsNone())
}

func (s *CLITestSuite) TestSessionStopsWhileWaitingForInput() {
	ctx, cancel := context.WithCancel(context.Background())
	in, feed := io.Pipe()
	defer feed.Close()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runSession(ctx, s.app, in, &out)
	}()

	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("session kept waiting for input after cancel")
	}
}

func (s *CLITestSuite) TestParseAttack() {
	attack, err := parseAttack("Scimitar:4:1d6+2")
	s.Require().NoError(err)
	s.Equal(entities.Attack{Name: "Scimitar", Bonus: 4, Damage: "1d6+2"}, attack)

	attack, err = parseAttack("Bite:-1:1d4")
	s.Require().NoError(err)
	s.Equal(-1, attack.Bonus)

	_, err = parseAttack("Claw:+x:1d4")
	s.True(errors.IsInvalidArgument(err))

	_, err = parseAttack("Claw")
	s.True(errors.IsInvalidArgument(err))
}

func (s *CLITestSuite) TestParseFieldValue() {
	testCases := []struct {
		field   entities.CharacterField
		raw     string
		want    any
		wantErr bool
	}{
		{field: entities.FieldName, raw: "Gimli", want: "Gimli"},
		{field: entities.FieldTeam, raw: "evil", want: "evil"},
		{field: entities.FieldIsPlayer, raw: "false", want: false},
		{field: entities.FieldIsPlayer, raw: "maybe", wantErr: true},
		{field: entities.FieldAC, raw: "17", want: 17},
		{field: entities.FieldHP, raw: "lots", wantErr: true},
		{field: entities.FieldInitiativeModifier, raw: "-2", want: -2},
		{
			field: entities.FieldAttacks,
			raw:   `[{"name":"Axe","bonus":5,"damage":"1d12+3"}]`,
			want:  []entities.Attack{{Name: "Axe", Bonus: 5, Damage: "1d12+3"}},
		},
		{field: entities.FieldAttacks, raw: "axe", wantErr: true},
		{field: "id", raw: "x", wantErr: true},
	}

	for _, tc := range testCases {
		s.Run(string(tc.field)+"="+tc.raw, func() {
			got, err := parseFieldValue(tc.field, tc.raw)
			if tc.wantErr {
				s.True(errors.IsInvalidArgument(err))
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, got)

			_, err = testutils.CreateTestNPC("x", "X", 0).WithField(tc.field, got)
			s.NoError(err, "parsed value must be accepted by WithField")
		})
	}
}

func (s *CLITestSuite) TestPrintCharacters() {
	var out bytes.Buffer
	printCharacters(&out, nil)
	s.Equal("No characters\n", out.String())

	out.Reset()
	printCharacters(&out, []entities.Character{testutils.CreateTestNPC(testutils.GoblinID, "Goblin", 2)})
	s.Contains(out.String(), testutils.GoblinID)
	s.Contains(out.String(), "Scimitar +4 (1d6+2)")
	s.Contains(out.String(), "npc")
}

func (s *CLITestSuite) TestCommandsAgainstSQLite() {
	path := filepath.Join(s.T().TempDir(), "tracker.db")

	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--backend", "sqlite", "--sqlite-path", path, "--log-level", "error"}, args...))
		s.Require().NoError(rootCmd.Execute())
		s.Require().NoError(tracker.Close())
		return out.String()
	}

	s.Contains(run("characters", "add", "--name", "Goblin", "--team", "evil", "--npc", "--attack", "Scimitar:4:1d6+2"), "Added Goblin")
	s.Contains(run("characters", "list"), "Scimitar +4 (1d6+2)")
	s.Contains(run("vehicles", "add", "--name", "Wagon", "--max-hp", "40"), "Added Wagon")
	s.Contains(run("vehicles", "list"), "Wagon")
	s.Contains(run("settings", "debug", "off"), "showDebugInfo: false")
	s.Contains(run("settings", "show"), "showDebugInfo: false")
}

func (s *CLITestSuite) TestMissingIDsReportNotFound() {
	path := filepath.Join(s.T().TempDir(), "tracker.db")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs(append([]string{"--backend", "sqlite", "--sqlite-path", path, "--log-level", "error"}, args...))
		err := rootCmd.Execute()
		s.Require().NoError(tracker.Close())
		return out.String(), err
	}

	testCases := [][]string{
		{"characters", "set", "missing", "name", "Ghost"},
		{"characters", "remove", "missing"},
		{"vehicles", "remove", "missing"},
	}
	for _, args := range testCases {
		s.Run(strings.Join(args, " "), func() {
			out, err := run(args...)
			s.True(errors.IsNotFound(err))
			s.NotContains(out, "Unknown")
			s.NotContains(out, "Updated")
			s.NotContains(out, "Removed")
		})
	}
}

func (s *CLITestSuite) TestRunDoctorHealthy() {
	ctrl := gomock.NewController(s.T())
	svc := doctormock.NewMockService(ctrl)
	ctx := context.Background()

	svc.EXPECT().
		Check(ctx, &doctor.CheckInput{Keys: nil}).
		Return(&doctor.CheckOutput{Reports: []doctor.KeyReport{
			{Key: "characters", Status: doctor.StatusOK, Count: 3, Bytes: 420},
			{Key: "vehicles", Status: doctor.StatusMissing},
		}}, nil)

	var out bytes.Buffer
	s.Require().NoError(runDoctor(ctx, svc, nil, false, &out))
	s.Contains(out.String(), "characters 3 records, 420 bytes")
	s.Contains(out.String(), "vehicles   not stored yet")
	s.Contains(out.String(), "No problems found")
}

func (s *CLITestSuite) TestRunDoctorNeedsFix() {
	ctrl := gomock.NewController(s.T())
	svc := doctormock.NewMockService(ctrl)
	ctx := context.Background()
	keys := []string{"vehicles"}
	broken := doctor.KeyReport{Key: "vehicles", Status: doctor.StatusMalformed, Detail: "unexpected end of JSON input"}

	svc.EXPECT().
		Check(ctx, &doctor.CheckInput{Keys: keys}).
		Return(&doctor.CheckOutput{Reports: []doctor.KeyReport{broken}}, nil).
		Times(2)

	var out bytes.Buffer
	err := runDoctor(ctx, svc, keys, false, &out)
	s.True(errors.IsFailedPrecondition(err))
	s.Contains(out.String(), "vehicles   malformed: unexpected end of JSON input")

	svc.EXPECT().
		Repair(ctx, &doctor.RepairInput{Keys: keys}).
		Return(&doctor.RepairOutput{Repaired: []doctor.KeyReport{broken}}, nil)

	out.Reset()
	s.Require().NoError(runDoctor(ctx, svc, keys, true, &out))
	s.Contains(out.String(), "Repaired vehicles")
}
