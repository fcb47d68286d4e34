package web

import (
	"net/http"

	"saturday-league/internal/league"
	"saturday-league/internal/model"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGoalsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeData(w, http.StatusOK, s.league.Goals(model.GoalFilter{
		GameID:   q.Get("gameId"),
		PlayerID: q.Get("playerId"),
		SeasonID: q.Get("seasonId"),
	}))
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	var req league.GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := s.league.RecordGoal(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, goal)
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	goal, err := s.league.DeleteGoal(r.Context(), chi.URLParam(r, "goalID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, goal)
}
