// Package fixture generates round-robin fixtures for a session and keeps the
// league table for it. Everything here is pure: callers own persistence.
package fixture

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientTeams = errors.New("need at least 3 teams to generate schedule")
	ErrAlreadyCompleted  = errors.New("fixture already completed")
)

const minTeams = 3

type InsufficientTeamsError struct {
	Count int
}

func (e *InsufficientTeamsError) Error() string {
	return fmt.Sprintf("%s, got %d", ErrInsufficientTeams, e.Count)
}

func (e *InsufficientTeamsError) Is(target error) bool {
	return target == ErrInsufficientTeams
}

// UnknownTeamError is returned when a fixture refers to a team ID that has no
// standing.
type UnknownTeamError struct {
	FixtureID int
	TeamID    int
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("fixture %d: no standing for team %d", e.FixtureID, e.TeamID)
}

type Standing struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Points         int    `json:"points"`
	GamesPlayed    int    `json:"gamesPlayed"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalsDifference"`
}

type Fixture struct {
	ID        int    `json:"id"`
	Round     int    `json:"round"`
	HomeID    int    `json:"homeId"`
	HomeTeam  string `json:"homeTeam"`
	AwayID    int    `json:"awayId"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Completed bool   `json:"isCompleted"`
}

// Complete records the final score. Scores and the completed flag are set once.
func (f *Fixture) Complete(home, away int) error {
	if f.Completed {
		return ErrAlreadyCompleted
	}
	if home < 0 || away < 0 {
		return fmt.Errorf("fixture %d: negative score %d-%d", f.ID, home, away)
	}
	f.HomeScore = &home
	f.AwayScore = &away
	f.Completed = true
	return nil
}

func (f Fixture) HasResult() bool {
	return f.Completed && f.HomeScore != nil && f.AwayScore != nil
}

func (f Fixture) ScoreLine() string {
	if !f.HasResult() {
		return fmt.Sprintf("%s vs %s", f.HomeTeam, f.AwayTeam)
	}
	return fmt.Sprintf("%s %d - %d %s", f.HomeTeam, *f.HomeScore, *f.AwayScore, f.AwayTeam)
}

// Rounds groups fixtures by round number, preserving fixture order inside each
// round. Rounds come back in ascending order.
func Rounds(fixtures []Fixture) [][]Fixture {
	maxRound := 0
	for _, f := range fixtures {
		if f.Round > maxRound {
			maxRound = f.Round
		}
	}
	if maxRound == 0 {
		return nil
	}
	rounds := make([][]Fixture, maxRound)
	for _, f := range fixtures {
		if f.Round < 1 {
			continue
		}
		rounds[f.Round-1] = append(rounds[f.Round-1], f)
	}
	return rounds
}
