package web

import (
	"net/http"

	"saturday-league/internal/league"
)

func (s *Server) handlePlayersList(w http.ResponseWriter, r *http.Request) {
	formalOnly := r.URL.Query().Get("formal") == "true"
	writeData(w, http.StatusOK, s.league.Players(formalOnly))
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req league.CreatePlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	player, err := s.league.CreatePlayer(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, player)
}
