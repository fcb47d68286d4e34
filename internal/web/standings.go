package web

import (
	"saturday-league/internal/fixture"
	"saturday-league/internal/model"
)

type StandingRow struct {
	Position int `json:"position"`
	fixture.Standing
	TeamID    string   `json:"teamId"`
	PlayerIDs []string `json:"playerIds"`
}

// buildStandingRows attaches session team identity to ranked engine
// standings. Engine IDs are session team numbers.
func buildStandingRows(session model.Session, standings []fixture.Standing) []StandingRow {
	byNumber := make(map[int]model.SessionTeam, len(session.Teams))
	for _, t := range session.Teams {
		byNumber[t.Number] = t
	}
	rows := make([]StandingRow, 0, len(standings))
	for i, st := range standings {
		team := byNumber[st.ID]
		rows = append(rows, StandingRow{
			Position:  i + 1,
			Standing:  st,
			TeamID:    team.ID,
			PlayerIDs: append([]string{}, team.PlayerIDs...),
		})
	}
	return rows
}

type RoundView struct {
	Round    int               `json:"round"`
	Fixtures []fixture.Fixture `json:"fixtures"`
	Resting  []string          `json:"resting,omitempty"`
}

// buildRounds groups fixtures by round and lists the teams sitting a round
// out, which happens when the number of teams is odd.
func buildRounds(names []string, fixtures []fixture.Fixture) []RoundView {
	rounds := fixture.Rounds(fixtures)
	views := make([]RoundView, 0, len(rounds))
	for _, round := range rounds {
		playing := map[int]bool{}
		for _, f := range round {
			playing[f.HomeID] = true
			playing[f.AwayID] = true
		}
		view := RoundView{Round: round[0].Round, Fixtures: round}
		for i, name := range names {
			if !playing[i+1] {
				view.Resting = append(view.Resting, name)
			}
		}
		views = append(views, view)
	}
	return views
}
