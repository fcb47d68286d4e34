package web

import (
	"net/http"

	"saturday-league/internal/league"
)

func (s *Server) handleSeasonsList(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.league.Seasons(r.Context()))
}

type seasonForm struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
}

func (s *Server) handleSeasonCreate(w http.ResponseWriter, r *http.Request) {
	var form seasonForm
	if !decodeJSON(w, r, &form) {
		return
	}
	start, err := parseDate(form.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(form.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	season, err := s.league.CreateSeason(r.Context(), league.CreateSeasonRequest{
		Name:      form.Name,
		StartDate: start,
		EndDate:   end,
		IsActive:  form.IsActive,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, season)
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.league.Scoreboard(r.Context(), r.URL.Query().Get("seasonId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, board)
}
