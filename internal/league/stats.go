package league

import (
	"context"
	"fmt"
	"sort"
	"time"

	"saturday-league/internal/model"
)

type PlayerRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	JerseyNumber   *int   `json:"jerseyNumber"`
	IsFormalMember bool   `json:"isFormalMember"`
}

func playerRef(p model.Player) PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name, JerseyNumber: p.JerseyNumber, IsFormalMember: p.IsFormalMember}
}

type PlayerStats struct {
	PlayerRef
	WeekendWins int `json:"weekendWins"`
	TotalGoals  int `json:"totalGoals"`
	GamesPlayed int `json:"gamesPlayed"`
	TeamsPlayed int `json:"teamsPlayed"`
}

type WinnerPlayer struct {
	PlayerRef
	GoalsScored int `json:"goalsScored"`
}

type WeekendWinner struct {
	SessionID     string         `json:"sessionId"`
	SessionName   string         `json:"sessionName"`
	SessionDate   time.Time      `json:"sessionDate"`
	WinnerTeam    string         `json:"winnerTeam"`
	WinnerPlayers []WinnerPlayer `json:"winnerPlayers"`
}

type SeasonSummary struct {
	TotalSessions     int `json:"totalSessions"`
	CompletedSessions int `json:"completedSessions"`
	TotalGames        int `json:"totalGames"`
	TotalGoals        int `json:"totalGoals"`
	UniquePlayers     int `json:"uniquePlayers"`
	FormalMembers     int `json:"formalMembers"`
}

type Scoreboard struct {
	Season         model.Season    `json:"season"`
	PlayerStats    []PlayerStats   `json:"playerStats"`
	WeekendWinners []WeekendWinner `json:"weekendWinners"`
	Summary        SeasonSummary   `json:"seasonSummary"`
}

// Scoreboard aggregates a season per player. Results are cached until the
// next write to the season.
func (s *Service) Scoreboard(ctx context.Context, seasonID string) (Scoreboard, error) {
	if seasonID == "" {
		return Scoreboard{}, invalid("season ID is required")
	}
	var cached Scoreboard
	if hit, err := s.cache.Get(ctx, scoreboardKey(seasonID), &cached); err != nil {
		s.logger.Warn("scoreboard cache read failed", "season_id", seasonID, "err", err)
	} else if hit {
		return cached, nil
	}

	season, ok := s.store.GetSeason(seasonID)
	if !ok {
		return Scoreboard{}, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	sessions := s.store.ListSessions(seasonID)
	goals := s.store.ListGoals(model.GoalFilter{SeasonID: seasonID})
	players := s.playerIndex()

	stats := map[string]*PlayerStats{}
	teamNames := map[string]map[string]bool{}
	statFor := func(id string) *PlayerStats {
		if st, ok := stats[id]; ok {
			return st
		}
		p, ok := players[id]
		if !ok {
			return nil
		}
		st := &PlayerStats{PlayerRef: playerRef(p)}
		stats[id] = st
		teamNames[id] = map[string]bool{}
		return st
	}

	totalGames := 0
	completed := 0
	for _, session := range sessions {
		totalGames += len(session.Games)
		if session.Completed {
			completed++
		}
		if winner, ok := session.WinnerTeam(); ok {
			for _, id := range winner.PlayerIDs {
				if st := statFor(id); st != nil {
					st.WeekendWins++
				}
			}
		}
		for _, team := range session.Teams {
			played := gamesPlayedBy(session, team.ID)
			for _, id := range team.PlayerIDs {
				if st := statFor(id); st != nil {
					st.GamesPlayed += played
					teamNames[id][team.Name] = true
				}
			}
		}
	}
	for _, g := range goals {
		if st, ok := stats[g.PlayerID]; ok {
			st.TotalGoals++
		}
	}

	board := Scoreboard{
		Season:         season,
		PlayerStats:    make([]PlayerStats, 0, len(stats)),
		WeekendWinners: weekendWinners(sessions, goals, players),
	}
	for id, st := range stats {
		st.TeamsPlayed = len(teamNames[id])
		board.PlayerStats = append(board.PlayerStats, *st)
	}
	sort.Slice(board.PlayerStats, func(i, j int) bool {
		a, b := board.PlayerStats[i], board.PlayerStats[j]
		if a.IsFormalMember != b.IsFormalMember {
			return a.IsFormalMember
		}
		if a.WeekendWins != b.WeekendWins {
			return a.WeekendWins > b.WeekendWins
		}
		if a.TotalGoals != b.TotalGoals {
			return a.TotalGoals > b.TotalGoals
		}
		return a.Name < b.Name
	})

	board.Summary = SeasonSummary{
		TotalSessions:     len(sessions),
		CompletedSessions: completed,
		TotalGames:        totalGames,
		TotalGoals:        len(goals),
		UniquePlayers:     len(board.PlayerStats),
	}
	for _, st := range board.PlayerStats {
		if st.IsFormalMember {
			board.Summary.FormalMembers++
		}
	}

	if err := s.cache.Set(ctx, scoreboardKey(seasonID), board, s.cacheTTL); err != nil {
		s.logger.Warn("scoreboard cache write failed", "season_id", seasonID, "err", err)
	}
	return board, nil
}

func gamesPlayedBy(session model.Session, teamID string) int {
	n := 0
	for _, g := range session.Games {
		if !g.Completed {
			continue
		}
		if _, ok := g.TeamSide(teamID); ok {
			n++
		}
	}
	return n
}

func weekendWinners(sessions []model.Session, goals []model.Goal, players map[string]model.Player) []WeekendWinner {
	goalsBy := map[string]int{} // team ID + player ID
	for _, g := range goals {
		goalsBy[g.TeamID+"/"+g.PlayerID]++
	}
	winners := []WeekendWinner{}
	for _, session := range sessions {
		team, ok := session.WinnerTeam()
		if !ok {
			continue
		}
		w := WeekendWinner{
			SessionID:     session.ID,
			SessionName:   session.Name,
			SessionDate:   session.Date,
			WinnerTeam:    team.Name,
			WinnerPlayers: []WinnerPlayer{},
		}
		for _, id := range team.PlayerIDs {
			p, ok := players[id]
			if !ok {
				continue
			}
			w.WinnerPlayers = append(w.WinnerPlayers, WinnerPlayer{PlayerRef: playerRef(p), GoalsScored: goalsBy[team.ID+"/"+id]})
		}
		winners = append(winners, w)
	}
	return winners
}

func (s *Service) playerIndex() map[string]model.Player {
	players := s.store.ListPlayers(false)
	index := make(map[string]model.Player, len(players))
	for _, p := range players {
		index[p.ID] = p
	}
	return index
}

type SeasonOverview struct {
	model.Season
	TotalSessions     int             `json:"totalSessions"`
	CompletedSessions int             `json:"completedSessions"`
	TotalGames        int             `json:"totalGames"`
	Winners           []WeekendWinner `json:"winners"`
}

func (s *Service) Seasons(ctx context.Context) []SeasonOverview {
	var cached []SeasonOverview
	if hit, err := s.cache.Get(ctx, seasonsKey, &cached); err != nil {
		s.logger.Warn("seasons cache read failed", "err", err)
	} else if hit {
		return cached
	}

	players := s.playerIndex()
	seasons := s.store.ListSeasons()
	out := make([]SeasonOverview, 0, len(seasons))
	for _, season := range seasons {
		sessions := s.store.ListSessions(season.ID)
		overview := SeasonOverview{Season: season, TotalSessions: len(sessions)}
		for _, session := range sessions {
			overview.TotalGames += len(session.Games)
			if session.Completed {
				overview.CompletedSessions++
			}
		}
		overview.Winners = weekendWinners(sessions, s.store.ListGoals(model.GoalFilter{SeasonID: season.ID}), players)
		out = append(out, overview)
	}
	if err := s.cache.Set(ctx, seasonsKey, out, s.cacheTTL); err != nil {
		s.logger.Warn("seasons cache write failed", "err", err)
	}
	return out
}

type CreateSeasonRequest struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

func (s *Service) CreateSeason(ctx context.Context, req CreateSeasonRequest) (model.Season, error) {
	name := model.NormalizeName(req.Name)
	if name == "" || req.StartDate.IsZero() || req.EndDate.IsZero() {
		return model.Season{}, invalid("name, start date and end date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return model.Season{}, invalid("season cannot end before it starts")
	}
	season, err := s.store.CreateSeason(model.Season{
		Name:      name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive,
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.Season{}, err
	}
	if err := s.cache.Delete(ctx, seasonsKey); err != nil {
		s.logger.Warn("cache invalidate failed", "err", err)
	}
	return season, nil
}

type PlayerOverview struct {
	model.Player
	TotalGoals    int            `json:"totalGoals"`
	WeekendWins   int            `json:"weekendWins"`
	GoalsBySeason map[string]int `json:"goalsBySeason"`
}

func (s *Service) Players(formalOnly bool) []PlayerOverview {
	players := s.store.ListPlayers(formalOnly)
	sessions := s.store.ListSessions("")

	seasonOfGame := map[string]string{}
	wins := map[string]int{}
	for _, session := range sessions {
		for _, g := range session.Games {
			seasonOfGame[g.ID] = session.SeasonID
		}
		if team, ok := session.WinnerTeam(); ok {
			for _, id := range team.PlayerIDs {
				wins[id]++
			}
		}
	}

	out := make([]PlayerOverview, 0, len(players))
	for _, p := range players {
		overview := PlayerOverview{Player: p, WeekendWins: wins[p.ID], GoalsBySeason: map[string]int{}}
		for _, g := range s.store.ListGoals(model.GoalFilter{PlayerID: p.ID}) {
			overview.TotalGoals++
			if seasonID, ok := seasonOfGame[g.GameID]; ok {
				overview.GoalsBySeason[seasonID]++
			}
		}
		out = append(out, overview)
	}
	return out
}

type CreatePlayerRequest struct {
	Name           string `json:"name"`
	JerseyNumber   *int   `json:"jerseyNumber"`
	IsFormalMember bool   `json:"isFormalMember"`
}

func (s *Service) CreatePlayer(req CreatePlayerRequest) (model.Player, error) {
	name := model.NormalizeName(req.Name)
	if name == "" {
		return model.Player{}, invalid("player name is required")
	}
	if req.JerseyNumber != nil && *req.JerseyNumber <= 0 {
		return model.Player{}, invalid("jersey number must be positive")
	}
	return s.store.CreatePlayer(model.Player{
		Name:           name,
		JerseyNumber:   req.JerseyNumber,
		IsFormalMember: req.IsFormalMember,
		CreatedAt:      s.now(),
	})
}
