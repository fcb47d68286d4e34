package league

import (
	"context"
	"fmt"
	"time"
)

// Seed loads a demo season into an empty store: the club's formal members,
// a few visitors and a first Saturday with four teams of three.
func (s *Service) Seed(ctx context.Context) error {
	if len(s.store.ListSeasons()) > 0 {
		return nil
	}
	season, err := s.CreateSeason(ctx, CreateSeasonRequest{
		Name:      "2024 Season",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if err != nil {
		return fmt.Errorf("seed season: %w", err)
	}

	members := []struct {
		name   string
		jersey int
	}{
		{"John Smith", 7},
		{"Mike Johnson", 10},
		{"David Brown", 9},
		{"Chris Wilson", 11},
		{"Tom Davis", 8},
		{"Alex Miller", 6},
		{"Ryan Taylor", 4},
		{"James Anderson", 5},
	}
	visitors := []string{"Steve Garcia", "Kevin Lee", "Mark White", "Paul Thompson"}

	playerIDs := make([]string, 0, len(members)+len(visitors))
	for _, m := range members {
		jersey := m.jersey
		p, err := s.CreatePlayer(CreatePlayerRequest{Name: m.name, JerseyNumber: &jersey, IsFormalMember: true})
		if err != nil {
			return fmt.Errorf("seed member %s: %w", m.name, err)
		}
		playerIDs = append(playerIDs, p.ID)
	}
	for _, name := range visitors {
		p, err := s.CreatePlayer(CreatePlayerRequest{Name: name})
		if err != nil {
			return fmt.Errorf("seed visitor %s: %w", name, err)
		}
		playerIDs = append(playerIDs, p.ID)
	}

	teamNames := []string{"Team A", "Team B", "Team C", "Team D"}
	perTeam := len(playerIDs) / len(teamNames)
	teams := make([]TeamInput, len(teamNames))
	for i, name := range teamNames {
		teams[i] = TeamInput{Name: name, PlayerIDs: playerIDs[i*perTeam : (i+1)*perTeam]}
	}
	session, err := s.CreateSession(ctx, CreateSessionRequest{
		SeasonID: season.ID,
		Name:     "Saturday Session - Week 1",
		Date:     time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
		Teams:    teams,
	})
	if err != nil {
		return fmt.Errorf("seed session: %w", err)
	}
	s.logger.Info("seeded demo league", "season", season.Name, "players", len(playerIDs), "session", session.Name)
	return nil
}
