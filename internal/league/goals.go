package league

import (
	"context"
	"errors"
	"fmt"

	"saturday-league/internal/model"
	"saturday-league/internal/store"
)

type GoalRequest struct {
	GameID   string         `json:"gameId"`
	PlayerID string         `json:"playerId"`
	TeamID   string         `json:"teamId"`
	Minute   int            `json:"minute"`
	Type     model.GoalType `json:"goalType"`
}

func (s *Service) Goals(filter model.GoalFilter) []model.Goal {
	return s.store.ListGoals(filter)
}

// RecordGoal credits a goal to a team in a game that is still being played
// and moves the game's running score with it.
func (s *Service) RecordGoal(ctx context.Context, req GoalRequest) (model.Goal, error) {
	if req.GameID == "" || req.PlayerID == "" || req.TeamID == "" {
		return model.Goal{}, invalid("game ID, player ID and team ID are required")
	}
	if req.Minute < 0 {
		return model.Goal{}, invalid("minute cannot be negative")
	}
	switch req.Type {
	case "":
		req.Type = model.GoalRegular
	case model.GoalRegular, model.GoalPenalty, model.GoalOwnGoal:
	default:
		return model.Goal{}, invalid("unknown goal type %q", req.Type)
	}

	game, ok := s.store.GetGame(req.GameID)
	if !ok {
		return model.Goal{}, fmt.Errorf("game %s: %w", req.GameID, ErrNotFound)
	}
	if _, ok := s.store.GetPlayer(req.PlayerID); !ok {
		return model.Goal{}, fmt.Errorf("player %s: %w", req.PlayerID, ErrNotFound)
	}
	session, err := s.Session(game.SessionID)
	if err != nil {
		return model.Goal{}, err
	}
	if session.Completed {
		return model.Goal{}, ErrSessionCompleted
	}
	if game.Completed {
		return model.Goal{}, ErrGameCompleted
	}
	if _, playing := game.TeamSide(req.TeamID); !playing {
		return model.Goal{}, invalid("team %s is not playing this game", req.TeamID)
	}
	// An own goal is scored by a player of the other side.
	if team, ok := session.Team(req.TeamID); ok && req.Type != model.GoalOwnGoal && len(team.PlayerIDs) > 0 && !team.HasPlayer(req.PlayerID) {
		return model.Goal{}, invalid("player %s does not play for %s", req.PlayerID, team.Name)
	}

	goal, err := s.store.RecordGoal(model.Goal{
		GameID:    req.GameID,
		PlayerID:  req.PlayerID,
		TeamID:    req.TeamID,
		Minute:    req.Minute,
		Type:      req.Type,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Goal{}, ErrGameCompleted
		}
		return model.Goal{}, err
	}
	s.invalidate(ctx, session.SeasonID)
	return goal, nil
}

// DeleteGoal removes a goal recorded by mistake. Goals of completed games
// are part of the result and stay.
func (s *Service) DeleteGoal(ctx context.Context, id string) (model.Goal, error) {
	goal, ok := s.store.GetGoal(id)
	if !ok {
		return model.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	seasonID := ""
	if game, ok := s.store.GetGame(goal.GameID); ok {
		if game.Completed {
			return model.Goal{}, ErrGameCompleted
		}
		if session, ok := s.store.GetSession(game.SessionID); ok {
			seasonID = session.SeasonID
		}
	}
	deleted, err := s.store.DeleteGoal(id)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Goal{}, ErrGameCompleted
		}
		return model.Goal{}, err
	}
	if seasonID != "" {
		s.invalidate(ctx, seasonID)
	}
	return deleted, nil
}
