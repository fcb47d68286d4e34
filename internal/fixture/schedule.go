package fixture

// GenerateSchedule returns a single round-robin over teamNames using the
// circle method. Team IDs on the fixtures are 1-based input positions, the
// same IDs InitializeTeams hands out for the same names.
//
// With an odd number of teams a BYE slot is appended; fixtures against it are
// dropped, so that team rests for the round. Nothing limits how many
// consecutive rounds a team may rest.
func GenerateSchedule(teamNames []string) ([]Fixture, error) {
	if len(teamNames) < minTeams {
		return nil, &InsufficientTeamsError{Count: len(teamNames)}
	}

	total := len(teamNames)
	if total%2 != 0 {
		total++
	}
	// the bye sits in the last slot when it exists
	isBye := func(pos int) bool { return pos >= len(teamNames) }

	ring := total - 1
	fixtures := make([]Fixture, 0, len(teamNames)*(len(teamNames)-1)/2)
	nextID := 1
	for round := 0; round < ring; round++ {
		// position 0 is fixed; pivot is the ring slot it meets this round
		pivot := ring - 1 - round
		for game := 0; game < total/2; game++ {
			var home, away int
			if game == 0 {
				home, away = 0, total-1-round
			} else {
				home = (pivot+game)%ring + 1
				away = (pivot-game+ring)%ring + 1
			}
			if isBye(home) || isBye(away) {
				continue
			}
			fixtures = append(fixtures, Fixture{
				ID:       nextID,
				Round:    round + 1,
				HomeID:   home + 1,
				HomeTeam: teamNames[home],
				AwayID:   away + 1,
				AwayTeam: teamNames[away],
			})
			nextID++
		}
	}
	return fixtures, nil
}
