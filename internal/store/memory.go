package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"saturday-league/internal/model"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu       sync.RWMutex
	players  map[string]model.Player
	seasons  map[string]model.Season
	sessions map[string]model.Session
	goals    map[string]model.Goal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:  make(map[string]model.Player),
		seasons:  make(map[string]model.Season),
		sessions: make(map[string]model.Session),
		goals:    make(map[string]model.Goal),
	}
}

func (s *MemoryStore) ListPlayers(formalOnly bool) []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		if formalOnly && !p.IsFormalMember {
			continue
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return sortPlayersLess(players[i], players[j]) })
	return players
}

func (s *MemoryStore) GetPlayer(id string) (model.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	return p, ok
}

func (s *MemoryStore) CreatePlayer(player model.Player) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(player.Name) == "" {
		return model.Player{}, errors.New("player name is required")
	}
	existing := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		existing = append(existing, p)
	}
	if jerseyTaken(existing, player.JerseyNumber) {
		return model.Player{}, fmt.Errorf("jersey number %d already taken: %w", *player.JerseyNumber, ErrConflict)
	}
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *MemoryStore) ListSeasons() []model.Season {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seasons := make([]model.Season, 0, len(s.seasons))
	for _, season := range s.seasons {
		seasons = append(seasons, season)
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].StartDate.After(seasons[j].StartDate) })
	return seasons
}

func (s *MemoryStore) GetSeason(id string) (model.Season, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	season, ok := s.seasons[id]
	return season, ok
}

func (s *MemoryStore) CreateSeason(season model.Season) (model.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.seasons {
		if strings.EqualFold(existing.Name, season.Name) {
			return model.Season{}, fmt.Errorf("season %q already exists: %w", season.Name, ErrConflict)
		}
	}
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if season.CreatedAt.IsZero() {
		season.CreatedAt = time.Now()
	}
	if season.IsActive {
		for id, existing := range s.seasons {
			existing.IsActive = false
			s.seasons[id] = existing
		}
	}
	s.seasons[season.ID] = season
	return season, nil
}

func (s *MemoryStore) ListSessions(seasonID string) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if seasonID != "" && session.SeasonID != seasonID {
			continue
		}
		sessions = append(sessions, cloneSession(session))
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	return sessions
}

func (s *MemoryStore) GetSession(id string) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return model.Session{}, false
	}
	return cloneSession(session), true
}

func (s *MemoryStore) CreateSession(session model.Session) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seasons[session.SeasonID]; !ok {
		return model.Session{}, fmt.Errorf("season %s: %w", session.SeasonID, ErrNotFound)
	}
	session = assignSessionIDs(cloneSession(session))
	s.sessions[session.ID] = cloneSession(session)
	return session, nil
}

func (s *MemoryStore) CompleteSession(id, winnerTeamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if existing.Completed {
		return fmt.Errorf("session %s already completed: %w", id, ErrConflict)
	}
	existing.Completed = true
	existing.WinnerTeamID = winnerTeamID
	s.sessions[id] = existing
	return nil
}

func (s *MemoryStore) GetGame(id string) (model.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, idx, ok := s.findGameLocked(id)
	if !ok {
		return model.Game{}, false
	}
	return session.Games[idx], true
}

func (s *MemoryStore) CompleteGame(gameID string, home, away int, playedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, idx, ok := s.findGameLocked(gameID)
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	game := session.Games[idx]
	if game.Completed {
		return fmt.Errorf("game %s already completed: %w", gameID, ErrConflict)
	}
	game.HomeScore = &home
	game.AwayScore = &away
	game.Completed = true
	game.PlayedAt = &playedAt
	session.Games[idx] = game
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) ListGoals(filter model.GoalFilter) []model.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type ordered struct {
		goal    model.Goal
		date    time.Time
		gameNum int
	}
	matches := []ordered{}
	for _, goal := range s.goals {
		if filter.GameID != "" && goal.GameID != filter.GameID {
			continue
		}
		if filter.PlayerID != "" && goal.PlayerID != filter.PlayerID {
			continue
		}
		session, idx, ok := s.findGameLocked(goal.GameID)
		if !ok {
			continue
		}
		if filter.SeasonID != "" && session.SeasonID != filter.SeasonID {
			continue
		}
		matches = append(matches, ordered{goal: goal, date: session.Date, gameNum: session.Games[idx].Number})
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.date.Equal(b.date) {
			return a.date.After(b.date)
		}
		if a.gameNum != b.gameNum {
			return a.gameNum < b.gameNum
		}
		if a.goal.Minute != b.goal.Minute {
			return a.goal.Minute < b.goal.Minute
		}
		return a.goal.CreatedAt.Before(b.goal.CreatedAt)
	})
	goals := make([]model.Goal, 0, len(matches))
	for _, m := range matches {
		goals = append(goals, m.goal)
	}
	return goals
}

func (s *MemoryStore) GetGoal(id string) (model.Goal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	return g, ok
}

func (s *MemoryStore) RecordGoal(goal model.Goal) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, idx, ok := s.findGameLocked(goal.GameID)
	if !ok {
		return model.Goal{}, fmt.Errorf("game %s: %w", goal.GameID, ErrNotFound)
	}
	game := session.Games[idx]
	if game.Completed {
		return model.Goal{}, fmt.Errorf("game %s already completed: %w", game.ID, ErrConflict)
	}
	home, ok := game.TeamSide(goal.TeamID)
	if !ok {
		return model.Goal{}, fmt.Errorf("team %s is not playing game %s: %w", goal.TeamID, game.ID, ErrConflict)
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	session.Games[idx] = adjustScore(game, home, 1)
	s.sessions[session.ID] = session
	s.goals[goal.ID] = goal
	return goal, nil
}

func (s *MemoryStore) DeleteGoal(id string) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[id]
	if !ok {
		return model.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	session, idx, ok := s.findGameLocked(goal.GameID)
	if ok {
		game := session.Games[idx]
		if game.Completed {
			return model.Goal{}, fmt.Errorf("game %s already completed: %w", game.ID, ErrConflict)
		}
		if home, onGame := game.TeamSide(goal.TeamID); onGame {
			session.Games[idx] = adjustScore(game, home, -1)
			s.sessions[session.ID] = session
		}
	}
	delete(s.goals, id)
	return goal, nil
}

// findGameLocked returns a private copy of the owning session; callers write
// it back after changing the game.
func (s *MemoryStore) findGameLocked(gameID string) (model.Session, int, bool) {
	for _, session := range s.sessions {
		for i, g := range session.Games {
			if g.ID == gameID {
				return cloneSession(session), i, true
			}
		}
	}
	return model.Session{}, -1, false
}

func adjustScore(game model.Game, home bool, delta int) model.Game {
	score := game.AwayScore
	if home {
		score = game.HomeScore
	}
	next := delta
	if score != nil {
		next = *score + delta
	}
	if next < 0 {
		next = 0
	}
	if home {
		game.HomeScore = &next
	} else {
		game.AwayScore = &next
	}
	return game
}

func assignSessionIDs(session model.Session) model.Session {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	for i := range session.Teams {
		if session.Teams[i].ID == "" {
			session.Teams[i].ID = uuid.NewString()
		}
		session.Teams[i].SessionID = session.ID
	}
	for i := range session.Games {
		if session.Games[i].ID == "" {
			session.Games[i].ID = uuid.NewString()
		}
		session.Games[i].SessionID = session.ID
	}
	return session
}

func cloneSession(session model.Session) model.Session {
	teams := make([]model.SessionTeam, len(session.Teams))
	for i, t := range session.Teams {
		t.PlayerIDs = append([]string(nil), t.PlayerIDs...)
		teams[i] = t
	}
	games := make([]model.Game, len(session.Games))
	for i, g := range session.Games {
		g.HomeScore = cloneInt(g.HomeScore)
		g.AwayScore = cloneInt(g.AwayScore)
		if g.PlayedAt != nil {
			playedAt := *g.PlayedAt
			g.PlayedAt = &playedAt
		}
		games[i] = g
	}
	session.Teams = teams
	session.Games = games
	return session
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
