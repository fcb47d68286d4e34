package league

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"saturday-league/internal/fixture"
	"saturday-league/internal/model"
	"saturday-league/internal/snapshot"
	"saturday-league/internal/store"

	"github.com/google/uuid"
)

// MaxTeams bounds a session; the schedule grows with the square of the team count.
const MaxTeams = 32

type TeamInput struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"playerIds"`
}

type CreateSessionRequest struct {
	SeasonID string      `json:"seasonId"`
	Name     string      `json:"sessionName"`
	Date     time.Time   `json:"sessionDate"`
	Teams    []TeamInput `json:"teams"`
}

func (s *Service) Sessions(seasonID string) []model.Session {
	return s.store.ListSessions(seasonID)
}

func (s *Service) Session(id string) (model.Session, error) {
	session, ok := s.store.GetSession(id)
	if !ok {
		return model.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return session, nil
}

// CreateSession draws up the round-robin for the given teams and stores the
// session with every game still to play.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (model.Session, error) {
	name := model.NormalizeName(req.Name)
	if req.SeasonID == "" || name == "" || req.Date.IsZero() {
		return model.Session{}, invalid("season, session name and session date are required")
	}
	if _, ok := s.store.GetSeason(req.SeasonID); !ok {
		return model.Session{}, fmt.Errorf("season %s: %w", req.SeasonID, ErrNotFound)
	}

	if len(req.Teams) > MaxTeams {
		return model.Session{}, invalid("at most %d teams per session, got %d", MaxTeams, len(req.Teams))
	}
	names := make([]string, len(req.Teams))
	seenPlayer := map[string]string{}
	for i, team := range req.Teams {
		names[i] = model.NormalizeName(team.Name)
		if names[i] == "" {
			return model.Session{}, invalid("team %d has no name", i+1)
		}
		for _, playerID := range team.PlayerIDs {
			if _, ok := s.store.GetPlayer(playerID); !ok {
				return model.Session{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
			}
			if other, dup := seenPlayer[playerID]; dup {
				return model.Session{}, invalid("player %s is on both %s and %s", playerID, other, names[i])
			}
			seenPlayer[playerID] = names[i]
		}
	}

	fixtures, err := fixture.GenerateSchedule(names)
	if err != nil {
		var short *fixture.InsufficientTeamsError
		if errors.As(err, &short) {
			return model.Session{}, &ValidationError{Message: err.Error()}
		}
		return model.Session{}, err
	}

	session := model.Session{
		ID:       uuid.NewString(),
		SeasonID: req.SeasonID,
		Name:     name,
		Date:     req.Date,
	}
	session.Teams = make([]model.SessionTeam, len(names))
	for i, teamName := range names {
		session.Teams[i] = model.SessionTeam{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Number:    i + 1,
			Name:      teamName,
			PlayerIDs: append([]string{}, req.Teams[i].PlayerIDs...),
		}
	}
	session.Games = make([]model.Game, len(fixtures))
	for i, f := range fixtures {
		session.Games[i] = model.Game{
			Number:     f.ID,
			Round:      f.Round,
			HomeTeamID: session.Teams[f.HomeID-1].ID,
			AwayTeamID: session.Teams[f.AwayID-1].ID,
		}
	}

	created, err := s.store.CreateSession(session)
	if err != nil {
		return model.Session{}, err
	}
	s.invalidate(ctx, created.SeasonID)
	s.logger.Info("session created", "session_id", created.ID, "teams", len(created.Teams), "games", len(created.Games))
	return created, nil
}

// Standings replays every completed game, in game order, through the engine.
func (s *Service) Standings(sessionID string) ([]fixture.Standing, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionStandings(session)
}

func sessionStandings(session model.Session) ([]fixture.Standing, error) {
	standings, fixtures := engineView(session)
	for _, f := range fixtures {
		next, err := fixture.UpdateTeamStats(standings, f)
		if err != nil {
			return nil, fmt.Errorf("replay game %d: %w", f.ID, err)
		}
		standings = next
	}
	return fixture.SortTeamsByRanking(standings), nil
}

// engineView maps a stored session onto engine standings and fixtures; the
// team number is the engine team ID.
func engineView(session model.Session) ([]fixture.Standing, []fixture.Fixture) {
	teams := append([]model.SessionTeam{}, session.Teams...)
	sort.Slice(teams, func(i, j int) bool { return teams[i].Number < teams[j].Number })
	names := make([]string, len(teams))
	byID := make(map[string]model.SessionTeam, len(teams))
	for i, t := range teams {
		names[i] = t.Name
		byID[t.ID] = t
	}
	standings := fixture.InitializeTeams(names)
	for i, t := range teams {
		standings[i].ID = t.Number
	}

	games := append([]model.Game{}, session.Games...)
	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })
	fixtures := make([]fixture.Fixture, 0, len(games))
	for _, g := range games {
		fixtures = append(fixtures, toFixture(g, byID))
	}
	return standings, fixtures
}

// Fixtures returns the session's games as engine fixtures in game order.
func Fixtures(session model.Session) []fixture.Fixture {
	_, fixtures := engineView(session)
	return fixtures
}

func toFixture(g model.Game, teams map[string]model.SessionTeam) fixture.Fixture {
	home, away := teams[g.HomeTeamID], teams[g.AwayTeamID]
	return fixture.Fixture{
		ID:        g.Number,
		Round:     g.Round,
		HomeID:    home.Number,
		HomeTeam:  home.Name,
		AwayID:    away.Number,
		AwayTeam:  away.Name,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Completed: g.Completed,
	}
}

type ResultRequest struct {
	HomeScore *int `json:"homeScore"`
	AwayScore *int `json:"awayScore"`
}

// RecordResult sets a game's final score. A game can be completed once.
func (s *Service) RecordResult(ctx context.Context, sessionID, gameID string, req ResultRequest) (model.Game, error) {
	if req.HomeScore == nil || req.AwayScore == nil {
		return model.Game{}, invalid("home and away scores are required")
	}
	session, err := s.Session(sessionID)
	if err != nil {
		return model.Game{}, err
	}
	if session.Completed {
		return model.Game{}, ErrSessionCompleted
	}
	game, ok := session.Game(gameID)
	if !ok {
		return model.Game{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	f := fixture.Fixture{ID: game.Number, Completed: game.Completed}
	if err := f.Complete(*req.HomeScore, *req.AwayScore); err != nil {
		if errors.Is(err, fixture.ErrAlreadyCompleted) {
			return model.Game{}, ErrGameCompleted
		}
		return model.Game{}, &ValidationError{Message: err.Error()}
	}

	if err := s.store.CompleteGame(game.ID, *f.HomeScore, *f.AwayScore, s.now()); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Game{}, ErrGameCompleted
		}
		return model.Game{}, err
	}
	s.invalidate(ctx, session.SeasonID)

	updated, ok := s.store.GetGame(game.ID)
	if !ok {
		return model.Game{}, fmt.Errorf("game %s: %w", game.ID, ErrNotFound)
	}
	teams := make(map[string]model.SessionTeam, len(session.Teams))
	for _, t := range session.Teams {
		teams[t.ID] = t
	}
	s.logger.Info("game completed", "session_id", sessionID, "game", updated.Number, "result", toFixture(updated, teams).ScoreLine())
	return updated, nil
}

// CompleteSession closes a session whose games are all played. The top
// ranked team wins the weekend and a snapshot is archived when an archiver
// is configured.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (model.Session, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if session.Completed {
		return model.Session{}, ErrSessionCompleted
	}
	if !session.AllGamesCompleted() {
		return model.Session{}, invalid("all games must be completed before the session can be closed")
	}
	standings, err := sessionStandings(session)
	if err != nil {
		return model.Session{}, err
	}
	for _, t := range session.Teams {
		if t.Number == standings[0].ID {
			session.WinnerTeamID = t.ID
		}
	}
	if err := s.store.CompleteSession(session.ID, session.WinnerTeamID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Session{}, ErrSessionCompleted
		}
		return model.Session{}, err
	}
	session.Completed = true
	s.invalidate(ctx, session.SeasonID)

	if s.archiver != nil {
		if err := s.archive(ctx, session, standings); err != nil {
			s.logger.Error("archive session snapshot", "session_id", session.ID, "err", err)
		}
	}
	winner, _ := session.WinnerTeam()
	s.logger.Info("session completed", "session_id", session.ID, "winner", winner.Name)
	return session, nil
}

func (s *Service) archive(ctx context.Context, session model.Session, standings []fixture.Standing) error {
	data, err := snapshot.Encode(buildSnapshot(session, standings, s.now()))
	if err != nil {
		return err
	}
	return s.archiver.Put(ctx, SnapshotKey(session), data, "application/json")
}

func SnapshotKey(session model.Session) string {
	return fmt.Sprintf("sessions/%s/%s/%s.json", session.SeasonID, session.Date.Format("2006-01-02"), session.ID)
}

func (s *Service) Snapshot(sessionID string) (snapshot.Snapshot, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	standings, err := sessionStandings(session)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return buildSnapshot(session, standings, s.now()), nil
}

func buildSnapshot(session model.Session, standings []fixture.Standing, savedAt time.Time) snapshot.Snapshot {
	_, fixtures := engineView(session)
	return snapshot.Snapshot{
		Version:   snapshot.CurrentVersion,
		ID:        session.ID,
		Name:      session.Name,
		Date:      session.Date.Format("2006-01-02"),
		Teams:     standings,
		Fixtures:  fixtures,
		Completed: session.Completed,
		SavedAt:   savedAt.UTC(),
	}
}

// PreviewSchedule runs the generator without storing anything. It returns the
// trimmed team names the fixtures were drawn for.
func (s *Service) PreviewSchedule(names []string) ([]string, []fixture.Fixture, error) {
	if len(names) > MaxTeams {
		return nil, nil, invalid("at most %d teams per session, got %d", MaxTeams, len(names))
	}
	cleaned := make([]string, len(names))
	for i, n := range names {
		cleaned[i] = strings.TrimSpace(n)
		if cleaned[i] == "" {
			return nil, nil, invalid("team %d has no name", i+1)
		}
	}
	fixtures, err := fixture.GenerateSchedule(cleaned)
	if err != nil {
		return nil, nil, &ValidationError{Message: err.Error()}
	}
	return cleaned, fixtures, nil
}
