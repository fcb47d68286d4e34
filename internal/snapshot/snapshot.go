// Package snapshot defines the persisted form of a session: its table and
// fixtures as plain JSON with an explicit format version.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saturday-league/internal/fixture"
)

const CurrentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type Snapshot struct {
	Version   int                `json:"version"`
	ID        string             `json:"id"`
	Name      string             `json:"sessionName,omitempty"`
	Date      string             `json:"date"`
	Teams     []fixture.Standing `json:"teams"`
	Fixtures  []fixture.Fixture  `json:"games"`
	Completed bool               `json:"isCompleted"`
	SavedAt   time.Time          `json:"savedAt"`
}

// legacyGame is a fixture as stored by clients before versioning: ids are
// strings and teams are referenced by name only.
type legacyGame struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Completed bool   `json:"isCompleted"`
	Round     int    `json:"round"`
}

type legacyTeam struct {
	fixture.Standing
	ID string `json:"id"`
}

type legacySession struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Name      string       `json:"sessionName"`
	Teams     []legacyTeam `json:"teams"`
	Games     []legacyGame `json:"games"`
	Completed bool         `json:"isCompleted"`
}

func Encode(s Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Version != CurrentVersion {
		return nil, fmt.Errorf("encode snapshot %s: %w: %d", s.ID, ErrUnsupportedVersion, s.Version)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode reads a snapshot. Blobs without a version field are treated as the
// unversioned client format and upgraded.
func Decode(data []byte) (Snapshot, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if probe.Version == nil {
		return decodeLegacy(data)
	}
	if *probe.Version != CurrentVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: %d", ErrUnsupportedVersion, *probe.Version)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func decodeLegacy(data []byte) (Snapshot, error) {
	var legacy legacySession
	if err := json.Unmarshal(data, &legacy); err != nil {
		return Snapshot{}, fmt.Errorf("decode legacy snapshot: %w", err)
	}
	s := Snapshot{
		Version:   CurrentVersion,
		ID:        legacy.ID,
		Name:      legacy.Name,
		Date:      legacy.Date,
		Completed: legacy.Completed,
		Teams:     make([]fixture.Standing, 0, len(legacy.Teams)),
		Fixtures:  make([]fixture.Fixture, 0, len(legacy.Games)),
	}
	// team ids are renumbered by position; names resolve to the first match
	ids := make(map[string]int, len(legacy.Teams))
	for i, t := range legacy.Teams {
		standing := t.Standing
		standing.ID = i + 1
		if _, ok := ids[standing.Name]; !ok {
			ids[standing.Name] = standing.ID
		}
		s.Teams = append(s.Teams, standing)
	}
	for i, g := range legacy.Games {
		homeID, ok := ids[g.HomeTeam]
		if !ok {
			return Snapshot{}, fmt.Errorf("decode legacy snapshot: game %s: unknown team %q", g.ID, g.HomeTeam)
		}
		awayID, ok := ids[g.AwayTeam]
		if !ok {
			return Snapshot{}, fmt.Errorf("decode legacy snapshot: game %s: unknown team %q", g.ID, g.AwayTeam)
		}
		s.Fixtures = append(s.Fixtures, fixture.Fixture{
			ID:        i + 1,
			Round:     g.Round,
			HomeID:    homeID,
			HomeTeam:  g.HomeTeam,
			AwayID:    awayID,
			AwayTeam:  g.AwayTeam,
			HomeScore: g.HomeScore,
			AwayScore: g.AwayScore,
			Completed: g.Completed,
		})
	}
	return s, nil
}
