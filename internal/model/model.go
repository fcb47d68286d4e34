package model

import (
	"strings"
	"time"
)

type GoalType string

const (
	GoalRegular GoalType = "regular"
	GoalPenalty GoalType = "penalty"
	GoalOwnGoal GoalType = "own_goal"
)

type Player struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	JerseyNumber   *int      `json:"jerseyNumber"`
	IsFormalMember bool      `json:"isFormalMember"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Season struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is one Saturday of football: a handful of teams drawn from the
// players present, playing a round-robin against each other.
type Session struct {
	ID           string        `json:"id"`
	SeasonID     string        `json:"seasonId"`
	Name         string        `json:"sessionName"`
	Date         time.Time     `json:"sessionDate"`
	Teams        []SessionTeam `json:"teams"`
	Games        []Game        `json:"games"`
	WinnerTeamID string        `json:"winnerTeamId,omitempty"`
	Completed    bool          `json:"isCompleted"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (s Session) Team(id string) (SessionTeam, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return SessionTeam{}, false
}

func (s Session) Game(id string) (Game, bool) {
	for _, g := range s.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}

func (s Session) WinnerTeam() (SessionTeam, bool) {
	if s.WinnerTeamID == "" {
		return SessionTeam{}, false
	}
	return s.Team(s.WinnerTeamID)
}

func (s Session) AllGamesCompleted() bool {
	for _, g := range s.Games {
		if !g.Completed {
			return false
		}
	}
	return len(s.Games) > 0
}

type SessionTeam struct {
	ID        string   `json:"id"`
	SessionID string   `json:"sessionId"`
	Number    int      `json:"number"`
	Name      string   `json:"teamName"`
	PlayerIDs []string `json:"playerIds"`
}

func (t SessionTeam) HasPlayer(playerID string) bool {
	for _, id := range t.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

type Game struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"sessionId"`
	Number     int        `json:"gameNumber"`
	Round      int        `json:"roundNumber"`
	HomeTeamID string     `json:"homeTeamId"`
	AwayTeamID string     `json:"awayTeamId"`
	HomeScore  *int       `json:"homeScore"`
	AwayScore  *int       `json:"awayScore"`
	Completed  bool       `json:"isCompleted"`
	PlayedAt   *time.Time `json:"playedAt,omitempty"`
}

func (g Game) TeamSide(teamID string) (home bool, ok bool) {
	switch teamID {
	case g.HomeTeamID:
		return true, true
	case g.AwayTeamID:
		return false, true
	}
	return false, false
}

type Goal struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	PlayerID  string    `json:"playerId"`
	TeamID    string    `json:"teamId"`
	Minute    int       `json:"minute"`
	Type      GoalType  `json:"goalType"`
	CreatedAt time.Time `json:"createdAt"`
}

type GoalFilter struct {
	GameID   string
	PlayerID string
	SeasonID string
}

func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
