package store

import (
	"errors"
	"time"

	"saturday-league/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Store interface {
	ListPlayers(formalOnly bool) []model.Player
	GetPlayer(id string) (model.Player, bool)
	CreatePlayer(player model.Player) (model.Player, error)

	ListSeasons() []model.Season
	GetSeason(id string) (model.Season, bool)
	CreateSeason(season model.Season) (model.Season, error)

	ListSessions(seasonID string) []model.Session
	GetSession(id string) (model.Session, bool)
	CreateSession(session model.Session) (model.Session, error)
	// CompleteSession closes a session once; a completed session yields ErrConflict.
	CompleteSession(id, winnerTeamID string) error

	GetGame(id string) (model.Game, bool)
	// CompleteGame sets the final score once; a completed game yields ErrConflict.
	CompleteGame(gameID string, home, away int, playedAt time.Time) error

	ListGoals(filter model.GoalFilter) []model.Goal
	GetGoal(id string) (model.Goal, bool)
	// RecordGoal stores the goal and bumps the scoring side of its game.
	RecordGoal(goal model.Goal) (model.Goal, error)
	// DeleteGoal removes the goal and takes it off its game's score.
	DeleteGoal(id string) (model.Goal, error)
}

func sortPlayersLess(a, b model.Player) bool {
	if a.IsFormalMember != b.IsFormalMember {
		return a.IsFormalMember
	}
	return a.Name < b.Name
}

func jerseyTaken(players []model.Player, number *int) bool {
	if number == nil {
		return false
	}
	for _, p := range players {
		if p.JerseyNumber != nil && *p.JerseyNumber == *number {
			return true
		}
	}
	return false
}
