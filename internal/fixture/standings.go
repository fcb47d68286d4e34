package fixture

import "sort"

func InitializeTeams(teamNames []string) []Standing {
	teams := make([]Standing, len(teamNames))
	for i, name := range teamNames {
		teams[i] = Standing{ID: i + 1, Name: name}
	}
	return teams
}

// UpdateTeamStats applies one completed fixture to the table and returns a new
// slice; the input is never modified. Fixtures without a final result leave
// the table as it was.
//
// The update is not idempotent. Applying the same fixture twice counts it
// twice, so callers must apply each fixture at most once.
func UpdateTeamStats(teams []Standing, f Fixture) ([]Standing, error) {
	updated := make([]Standing, len(teams))
	copy(updated, teams)
	if !f.HasResult() {
		return updated, nil
	}

	home, away := -1, -1
	for i, t := range updated {
		switch t.ID {
		case f.HomeID:
			home = i
		case f.AwayID:
			away = i
		}
	}
	if home < 0 {
		return updated, &UnknownTeamError{FixtureID: f.ID, TeamID: f.HomeID}
	}
	if away < 0 {
		return updated, &UnknownTeamError{FixtureID: f.ID, TeamID: f.AwayID}
	}

	updated[home] = applyResult(updated[home], *f.HomeScore, *f.AwayScore)
	updated[away] = applyResult(updated[away], *f.AwayScore, *f.HomeScore)
	return updated, nil
}

func applyResult(t Standing, scored, conceded int) Standing {
	t.GamesPlayed++
	switch {
	case scored > conceded:
		t.Wins++
		t.Points += 3
	case scored == conceded:
		t.Draws++
		t.Points++
	default:
		t.Losses++
	}
	t.GoalsFor += scored
	t.GoalsAgainst += conceded
	t.GoalDifference = t.GoalsFor - t.GoalsAgainst
	return t
}

// SortTeamsByRanking orders by points, goal difference, then goals scored.
// Ties on all three keep their input order.
func SortTeamsByRanking(teams []Standing) []Standing {
	sorted := make([]Standing, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
	return sorted
}
