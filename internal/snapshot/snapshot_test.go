package snapshot

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"saturday-league/internal/fixture"
)

func TestEncodeDecode(t *testing.T) {
	fixtures, err := fixture.GenerateSchedule([]string{"Reds", "Blues", "Greens"})
	if err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
	if err := fixtures[0].Complete(2, 1); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	teams, err := fixture.UpdateTeamStats(fixture.InitializeTeams([]string{"Reds", "Blues", "Greens"}), fixtures[0])
	if err != nil {
		t.Fatalf("UpdateTeamStats: %v", err)
	}
	in := Snapshot{
		ID:       "session-1",
		Date:     "2024-07-20",
		Teams:    teams,
		Fixtures: fixtures,
		SavedAt:  time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC),
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	in.Version = CurrentVersion
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":7,"id":"x"}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Decode error = %v, want ErrUnsupportedVersion", err)
	}
	if _, err := Encode(Snapshot{Version: 2}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Encode error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecode_LegacyClientBlob(t *testing.T) {
	legacy := `{
		"id": "1721469600000",
		"date": "2024-07-20",
		"teams": [
			{"id": "1", "name": "Team A", "points": 3, "gamesPlayed": 1, "wins": 1, "goalsFor": 2, "goalsAgainst": 0, "goalsDifference": 2},
			{"id": "2", "name": "Team B", "points": 0, "gamesPlayed": 1, "losses": 1, "goalsFor": 0, "goalsAgainst": 2, "goalsDifference": -2},
			{"id": "3", "name": "Team C"}
		],
		"games": [
			{"id": "1", "homeTeam": "Team A", "awayTeam": "Team B", "homeScore": 2, "awayScore": 0, "isCompleted": true, "round": 1},
			{"id": "2", "homeTeam": "Team B", "awayTeam": "Team C", "isCompleted": false, "round": 2}
		],
		"isCompleted": false
	}`
	s, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", s.Version, CurrentVersion)
	}
	if len(s.Teams) != 3 || s.Teams[1].ID != 2 || s.Teams[0].Points != 3 {
		t.Errorf("teams = %+v", s.Teams)
	}
	first := s.Fixtures[0]
	if first.HomeID != 1 || first.AwayID != 2 || !first.HasResult() || *first.HomeScore != 2 {
		t.Errorf("first fixture = %+v", first)
	}
	if s.Fixtures[1].HomeScore != nil || s.Fixtures[1].AwayID != 3 {
		t.Errorf("second fixture = %+v", s.Fixtures[1])
	}
}

func TestDecode_LegacyUnknownTeam(t *testing.T) {
	_, err := Decode([]byte(`{"id":"1","teams":[{"id":"1","name":"A"}],"games":[{"id":"1","homeTeam":"A","awayTeam":"Z"}]}`))
	if err == nil {
		t.Fatal("expected error for game referencing an unknown team")
	}
}
