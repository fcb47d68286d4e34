package web

import (
	"net/http"

	"saturday-league/internal/league"
	"saturday-league/internal/model"

	"github.com/go-chi/chi/v5"
)

type sessionView struct {
	model.Session
	Rounds []RoundView `json:"rounds"`
}

func newSessionView(session model.Session) sessionView {
	names := make([]string, len(session.Teams))
	for _, t := range session.Teams {
		if t.Number >= 1 && t.Number <= len(names) {
			names[t.Number-1] = t.Name
		}
	}
	return sessionView{Session: session, Rounds: buildRounds(names, league.Fixtures(session))}
}

func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.league.Sessions(r.URL.Query().Get("seasonId")))
}

func (s *Server) handleSessionShow(w http.ResponseWriter, r *http.Request) {
	session, err := s.league.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newSessionView(session))
}

type sessionForm struct {
	SeasonID    string             `json:"seasonId"`
	SessionName string             `json:"sessionName"`
	SessionDate string             `json:"sessionDate"`
	Teams       []league.TeamInput `json:"teams"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var form sessionForm
	if !decodeJSON(w, r, &form) {
		return
	}
	date, err := parseDate(form.SessionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.league.CreateSession(r.Context(), league.CreateSessionRequest{
		SeasonID: form.SeasonID,
		Name:     form.SessionName,
		Date:     date,
		Teams:    form.Teams,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, newSessionView(session))
}

func (s *Server) handleSessionStandings(w http.ResponseWriter, r *http.Request) {
	session, err := s.league.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	standings, err := s.league.Standings(session.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, buildStandingRows(session, standings))
}

func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.league.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, snap)
}

func (s *Server) handleGameResult(w http.ResponseWriter, r *http.Request) {
	var req league.ResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	game, err := s.league.RecordResult(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "gameID"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, game)
}

func (s *Server) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	session, err := s.league.CompleteSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newSessionView(session))
}

type previewForm struct {
	Teams []string `json:"teams"`
}

func (s *Server) handleSchedulePreview(w http.ResponseWriter, r *http.Request) {
	var form previewForm
	if !decodeJSON(w, r, &form) {
		return
	}
	teams, fixtures, err := s.league.PreviewSchedule(form.Teams)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"fixtures": fixtures,
		"rounds":   buildRounds(teams, fixtures),
	})
}
