package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"saturday-league/internal/model"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "league.db"), SQLiteOptions{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

type fixtureData struct {
	season  model.Season
	session model.Session
	scorer  model.Player
}

func seedSession(t *testing.T, s Store) fixtureData {
	t.Helper()
	jersey := 9
	scorer, err := s.CreatePlayer(model.Player{Name: "Sam", JerseyNumber: &jersey, IsFormalMember: true})
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	season, err := s.CreateSeason(model.Season{
		Name:      "2024 Season",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	session, err := s.CreateSession(model.Session{
		SeasonID: season.ID,
		Name:     "Week 1",
		Date:     time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC),
		Teams: []model.SessionTeam{
			{ID: "team-a", Number: 1, Name: "Team A", PlayerIDs: []string{scorer.ID}},
			{ID: "team-b", Number: 2, Name: "Team B"},
			{ID: "team-c", Number: 3, Name: "Team C"},
		},
		Games: []model.Game{
			{Number: 1, Round: 1, HomeTeamID: "team-b", AwayTeamID: "team-c"},
			{Number: 2, Round: 2, HomeTeamID: "team-a", AwayTeamID: "team-c"},
			{Number: 3, Round: 3, HomeTeamID: "team-a", AwayTeamID: "team-b"},
		},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return fixtureData{season: season, session: session, scorer: scorer}
}

func TestStore_PlayersOrderedAndJerseyUnique(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ten := 10
			if _, err := s.CreatePlayer(model.Player{Name: "Zed", JerseyNumber: &ten, IsFormalMember: true}); err != nil {
				t.Fatalf("CreatePlayer: %v", err)
			}
			if _, err := s.CreatePlayer(model.Player{Name: "Alex"}); err != nil {
				t.Fatalf("CreatePlayer: %v", err)
			}
			if _, err := s.CreatePlayer(model.Player{Name: "Bo", JerseyNumber: &ten}); !errors.Is(err, ErrConflict) {
				t.Errorf("duplicate jersey error = %v, want ErrConflict", err)
			}
			if _, err := s.CreatePlayer(model.Player{Name: "  "}); err == nil {
				t.Error("expected error for blank name")
			}

			players := s.ListPlayers(false)
			if len(players) != 2 || players[0].Name != "Zed" || players[1].Name != "Alex" {
				t.Errorf("ListPlayers = %+v, want members first", players)
			}
			if formal := s.ListPlayers(true); len(formal) != 1 {
				t.Errorf("ListPlayers(formalOnly) len = %d, want 1", len(formal))
			}
			got, ok := s.GetPlayer(players[0].ID)
			if !ok || got.JerseyNumber == nil || *got.JerseyNumber != 10 {
				t.Errorf("GetPlayer = %+v, %v", got, ok)
			}
		})
	}
}

func TestStore_SeasonsSingleActive(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.CreateSeason(model.Season{Name: "2023", StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true})
			if err != nil {
				t.Fatalf("CreateSeason: %v", err)
			}
			if _, err := s.CreateSeason(model.Season{Name: "2024", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true}); err != nil {
				t.Fatalf("CreateSeason: %v", err)
			}
			if _, err := s.CreateSeason(model.Season{Name: "2024", StartDate: time.Now()}); !errors.Is(err, ErrConflict) {
				t.Errorf("duplicate season error = %v, want ErrConflict", err)
			}
			seasons := s.ListSeasons()
			if len(seasons) != 2 || seasons[0].Name != "2024" {
				t.Fatalf("ListSeasons = %+v", seasons)
			}
			if old, _ := s.GetSeason(first.ID); old.IsActive {
				t.Error("older season still active")
			}
		})
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			data := seedSession(t, s)
			got, ok := s.GetSession(data.session.ID)
			if !ok {
				t.Fatal("GetSession: not found")
			}
			if len(got.Teams) != 3 || len(got.Games) != 3 {
				t.Fatalf("session has %d teams, %d games", len(got.Teams), len(got.Games))
			}
			if got.Teams[0].Name != "Team A" || !got.Teams[0].HasPlayer(data.scorer.ID) {
				t.Errorf("team A = %+v", got.Teams[0])
			}
			if got.Games[0].HomeTeamID != "team-b" || got.Games[0].SessionID != got.ID || got.Games[0].HomeScore != nil {
				t.Errorf("game 1 = %+v", got.Games[0])
			}
			if !got.Date.Equal(data.session.Date) {
				t.Errorf("Date = %v, want %v", got.Date, data.session.Date)
			}
			if list := s.ListSessions(data.season.ID); len(list) != 1 {
				t.Errorf("ListSessions len = %d, want 1", len(list))
			}
			if list := s.ListSessions("other"); len(list) != 0 {
				t.Errorf("ListSessions(other) len = %d, want 0", len(list))
			}
			if _, err := s.CreateSession(model.Session{SeasonID: "missing", Name: "x", Date: time.Now()}); !errors.Is(err, ErrNotFound) {
				t.Errorf("CreateSession with missing season error = %v, want ErrNotFound", err)
			}

			if err := s.CompleteSession(got.ID, "team-a"); err != nil {
				t.Fatalf("CompleteSession: %v", err)
			}
			updated, _ := s.GetSession(got.ID)
			if !updated.Completed || updated.WinnerTeamID != "team-a" {
				t.Errorf("completed session = %+v", updated)
			}
			if err := s.CompleteSession(got.ID, "team-b"); !errors.Is(err, ErrConflict) {
				t.Errorf("second CompleteSession error = %v, want ErrConflict", err)
			}
			if again, _ := s.GetSession(got.ID); again.WinnerTeamID != "team-a" {
				t.Errorf("winner after second complete = %q, want team-a", again.WinnerTeamID)
			}
			if err := s.CompleteSession("missing", ""); !errors.Is(err, ErrNotFound) {
				t.Errorf("CompleteSession(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_CompleteGameOnce(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			data := seedSession(t, s)
			gameID := data.session.Games[0].ID
			playedAt := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
			if err := s.CompleteGame(gameID, 2, 1, playedAt); err != nil {
				t.Fatalf("CompleteGame: %v", err)
			}
			if err := s.CompleteGame(gameID, 0, 0, playedAt); !errors.Is(err, ErrConflict) {
				t.Errorf("second CompleteGame error = %v, want ErrConflict", err)
			}
			if err := s.CompleteGame("missing", 0, 0, playedAt); !errors.Is(err, ErrNotFound) {
				t.Errorf("CompleteGame(missing) error = %v, want ErrNotFound", err)
			}
			game, ok := s.GetGame(gameID)
			if !ok {
				t.Fatal("GetGame: not found")
			}
			if !game.Completed || *game.HomeScore != 2 || *game.AwayScore != 1 || game.PlayedAt == nil {
				t.Errorf("completed game = %+v", game)
			}
		})
	}
}

func TestStore_GoalsMoveTheScore(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			data := seedSession(t, s)
			game := data.session.Games[1] // Team A v Team C

			goal, err := s.RecordGoal(model.Goal{GameID: game.ID, PlayerID: data.scorer.ID, TeamID: "team-a", Minute: 12, Type: model.GoalRegular})
			if err != nil {
				t.Fatalf("RecordGoal: %v", err)
			}
			if _, err := s.RecordGoal(model.Goal{GameID: game.ID, PlayerID: data.scorer.ID, TeamID: "team-a", Minute: 3, Type: model.GoalPenalty}); err != nil {
				t.Fatalf("RecordGoal: %v", err)
			}
			if _, err := s.RecordGoal(model.Goal{GameID: game.ID, PlayerID: data.scorer.ID, TeamID: "team-b", Minute: 5}); !errors.Is(err, ErrConflict) {
				t.Errorf("goal for team not in game error = %v, want ErrConflict", err)
			}

			session, _ := s.GetSession(data.session.ID)
			if g := session.Games[1]; g.HomeScore == nil || *g.HomeScore != 2 || g.AwayScore != nil {
				t.Errorf("game after goals = %+v", g)
			}

			goals := s.ListGoals(model.GoalFilter{GameID: game.ID})
			if len(goals) != 2 || goals[0].Minute != 3 || goals[1].Minute != 12 {
				t.Errorf("ListGoals = %+v, want ordered by minute", goals)
			}
			if byPlayer := s.ListGoals(model.GoalFilter{PlayerID: data.scorer.ID, SeasonID: data.season.ID}); len(byPlayer) != 2 {
				t.Errorf("ListGoals by player len = %d, want 2", len(byPlayer))
			}
			if other := s.ListGoals(model.GoalFilter{SeasonID: "other"}); len(other) != 0 {
				t.Errorf("ListGoals other season len = %d, want 0", len(other))
			}

			deleted, err := s.DeleteGoal(goal.ID)
			if err != nil {
				t.Fatalf("DeleteGoal: %v", err)
			}
			if deleted.ID != goal.ID {
				t.Errorf("DeleteGoal returned %+v", deleted)
			}
			if _, ok := s.GetGoal(goal.ID); ok {
				t.Error("goal still present after delete")
			}
			if _, err := s.DeleteGoal(goal.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second DeleteGoal error = %v, want ErrNotFound", err)
			}
			session, _ = s.GetSession(data.session.ID)
			if g := session.Games[1]; *g.HomeScore != 1 {
				t.Errorf("home score after delete = %d, want 1", *g.HomeScore)
			}

			if err := s.CompleteGame(game.ID, 1, 0, time.Now()); err != nil {
				t.Fatalf("CompleteGame: %v", err)
			}
			if _, err := s.RecordGoal(model.Goal{GameID: game.ID, PlayerID: data.scorer.ID, TeamID: "team-a", Minute: 40}); !errors.Is(err, ErrConflict) {
				t.Errorf("goal on completed game error = %v, want ErrConflict", err)
			}
		})
	}
}

func TestSQLiteStore_CorruptPlayerIDs(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "league.db"), SQLiteOptions{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	data := seedSession(t, s)

	if _, err := s.db.Exec(`UPDATE session_teams SET player_ids = ? WHERE session_id = ?`, "{not json", data.session.ID); err != nil {
		t.Fatalf("corrupt player_ids: %v", err)
	}
	session := model.Session{ID: data.session.ID}
	err = s.loadSessionChildren(&session)
	if err == nil || !strings.Contains(err.Error(), "scan session team") {
		t.Errorf("loadSessionChildren error = %v, want scan session team error", err)
	}
	if _, ok := s.GetSession(data.session.ID); ok {
		t.Error("GetSession returned a session with corrupt team players")
	}
}

func TestDialectRebind(t *testing.T) {
	pg := dialect{positional: true}
	got := pg.rebind(`SELECT a FROM t WHERE x = ? AND y = ?`)
	if want := `SELECT a FROM t WHERE x = $1 AND y = $2`; got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
	lite := dialect{}
	if q := `SELECT ?`; lite.rebind(q) != q {
		t.Errorf("sqlite rebind changed query: %q", lite.rebind(q))
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (id TEXT);\n\nCREATE TABLE b (id TEXT);\n")
	if len(stmts) != 2 {
		t.Fatalf("splitStatements = %q, want 2 statements", stmts)
	}
}
