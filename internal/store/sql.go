package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"saturday-league/internal/model"

	"github.com/google/uuid"
)

// dialect covers the few places where SQLite and Postgres disagree.
type dialect struct {
	name       string
	positional bool
	timeValue  func(t time.Time) any
}

// rebind rewrites ? placeholders to $1..$n for Postgres.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) timeArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return d.timeValue(t)
}

func (d dialect) timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlStore) query(q string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.dialect.rebind(q), args...)
}

func (s *sqlStore) queryRow(q string, args ...any) *sql.Row {
	return s.db.QueryRow(s.dialect.rebind(q), args...)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

const playerColumns = `id, name, jersey_number, is_formal_member, created_at`

func (s *sqlStore) ListPlayers(formalOnly bool) []model.Player {
	q := `SELECT ` + playerColumns + ` FROM players`
	args := []any{}
	if formalOnly {
		q += ` WHERE is_formal_member = ?`
		args = append(args, true)
	}
	q += ` ORDER BY is_formal_member DESC, name ASC`
	rows, err := s.query(q, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		p, err := scanPlayerRow(rows)
		if err != nil {
			continue
		}
		players = append(players, p)
	}
	return players
}

func (s *sqlStore) GetPlayer(id string) (model.Player, bool) {
	p, err := scanPlayerRow(s.queryRow(`SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err != nil {
		return model.Player{}, false
	}
	return p, true
}

func (s *sqlStore) CreatePlayer(player model.Player) (model.Player, error) {
	if strings.TrimSpace(player.Name) == "" {
		return model.Player{}, errors.New("player name is required")
	}
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	var jersey any
	if player.JerseyNumber != nil {
		jersey = *player.JerseyNumber
	}
	_, err := s.db.Exec(s.dialect.rebind(`INSERT INTO players (`+playerColumns+`) VALUES (?,?,?,?,?)`),
		player.ID, player.Name, jersey, player.IsFormalMember, s.dialect.timeArg(player.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Player{}, fmt.Errorf("jersey number already taken: %w", ErrConflict)
		}
		return model.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return player, nil
}

const seasonColumns = `id, name, start_date, end_date, is_active, created_at`

func (s *sqlStore) ListSeasons() []model.Season {
	rows, err := s.query(`SELECT ` + seasonColumns + ` FROM seasons ORDER BY start_date DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	seasons := []model.Season{}
	for rows.Next() {
		season, err := scanSeasonRow(rows)
		if err != nil {
			continue
		}
		seasons = append(seasons, season)
	}
	return seasons
}

func (s *sqlStore) GetSeason(id string) (model.Season, bool) {
	season, err := scanSeasonRow(s.queryRow(`SELECT `+seasonColumns+` FROM seasons WHERE id = ?`, id))
	if err != nil {
		return model.Season{}, false
	}
	return season, true
}

func (s *sqlStore) CreateSeason(season model.Season) (model.Season, error) {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if season.CreatedAt.IsZero() {
		season.CreatedAt = time.Now()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return model.Season{}, fmt.Errorf("begin create season tx: %w", err)
	}
	defer tx.Rollback()

	if season.IsActive {
		if _, err := tx.Exec(s.dialect.rebind(`UPDATE seasons SET is_active = ? WHERE is_active = ?`), false, true); err != nil {
			return model.Season{}, fmt.Errorf("deactivate seasons: %w", err)
		}
	}
	_, err = tx.Exec(s.dialect.rebind(`INSERT INTO seasons (`+seasonColumns+`) VALUES (?,?,?,?,?,?)`),
		season.ID, season.Name, s.dialect.timeArg(season.StartDate), s.dialect.timeArg(season.EndDate), season.IsActive, s.dialect.timeArg(season.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Season{}, fmt.Errorf("season %q already exists: %w", season.Name, ErrConflict)
		}
		return model.Season{}, fmt.Errorf("insert season: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Season{}, fmt.Errorf("commit create season tx: %w", err)
	}
	return season, nil
}

const sessionColumns = `id, season_id, name, session_date, winner_team_id, completed, created_at`

func (s *sqlStore) ListSessions(seasonID string) []model.Session {
	q := `SELECT ` + sessionColumns + ` FROM sessions`
	args := []any{}
	if seasonID != "" {
		q += ` WHERE season_id = ?`
		args = append(args, seasonID)
	}
	q += ` ORDER BY session_date DESC`
	rows, err := s.query(q, args...)
	if err != nil {
		return nil
	}
	sessions := []model.Session{}
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	rows.Close()

	for i := range sessions {
		if err := s.loadSessionChildren(&sessions[i]); err != nil {
			return nil
		}
	}
	return sessions
}

func (s *sqlStore) GetSession(id string) (model.Session, bool) {
	session, err := scanSessionRow(s.queryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err != nil {
		return model.Session{}, false
	}
	if err := s.loadSessionChildren(&session); err != nil {
		return model.Session{}, false
	}
	return session, true
}

func (s *sqlStore) loadSessionChildren(session *model.Session) error {
	teamRows, err := s.query(`SELECT id, session_id, team_number, name, player_ids FROM session_teams WHERE session_id = ? ORDER BY team_number`, session.ID)
	if err != nil {
		return fmt.Errorf("query session teams: %w", err)
	}
	session.Teams = []model.SessionTeam{}
	for teamRows.Next() {
		var team model.SessionTeam
		var playerJSON sql.NullString
		if err := teamRows.Scan(&team.ID, &team.SessionID, &team.Number, &team.Name, &playerJSON); err != nil {
			teamRows.Close()
			return fmt.Errorf("scan session team: %w", err)
		}
		if playerJSON.Valid && playerJSON.String != "" {
			if err := json.Unmarshal([]byte(playerJSON.String), &team.PlayerIDs); err != nil {
				teamRows.Close()
				return fmt.Errorf("scan session team: %w", err)
			}
		}
		session.Teams = append(session.Teams, team)
	}
	err = teamRows.Err()
	teamRows.Close()
	if err != nil {
		return fmt.Errorf("iterate session teams: %w", err)
	}

	gameRows, err := s.query(`SELECT `+gameColumns+` FROM games WHERE session_id = ? ORDER BY game_number`, session.ID)
	if err != nil {
		return fmt.Errorf("query games: %w", err)
	}
	defer gameRows.Close()
	session.Games = []model.Game{}
	for gameRows.Next() {
		game, err := scanGameRow(gameRows)
		if err != nil {
			return fmt.Errorf("scan game: %w", err)
		}
		session.Games = append(session.Games, game)
	}
	return gameRows.Err()
}

func (s *sqlStore) CreateSession(session model.Session) (model.Session, error) {
	if _, ok := s.GetSeason(session.SeasonID); !ok {
		return model.Session{}, fmt.Errorf("season %s: %w", session.SeasonID, ErrNotFound)
	}
	session = assignSessionIDs(cloneSession(session))

	tx, err := s.db.Begin()
	if err != nil {
		return model.Session{}, fmt.Errorf("begin create session tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(s.dialect.rebind(`INSERT INTO sessions (`+sessionColumns+`) VALUES (?,?,?,?,?,?,?)`),
		session.ID, session.SeasonID, session.Name, s.dialect.timeArg(session.Date), session.WinnerTeamID, session.Completed, s.dialect.timeArg(session.CreatedAt),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("insert session: %w", err)
	}
	for _, team := range session.Teams {
		_, err := tx.Exec(s.dialect.rebind(`INSERT INTO session_teams (id, session_id, team_number, name, player_ids) VALUES (?,?,?,?,?)`),
			team.ID, team.SessionID, team.Number, team.Name, string(toJSON(team.PlayerIDs)),
		)
		if err != nil {
			return model.Session{}, fmt.Errorf("insert team %s: %w", team.Name, err)
		}
	}
	for _, game := range session.Games {
		_, err := tx.Exec(s.dialect.rebind(`INSERT INTO games (`+gameColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`),
			game.ID, game.SessionID, game.Number, game.Round, game.HomeTeamID, game.AwayTeamID,
			intPtrArg(game.HomeScore), intPtrArg(game.AwayScore), game.Completed, s.dialect.timePtrArg(game.PlayedAt),
		)
		if err != nil {
			return model.Session{}, fmt.Errorf("insert game %d: %w", game.Number, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Session{}, fmt.Errorf("commit create session tx: %w", err)
	}
	return session, nil
}

func (s *sqlStore) CompleteSession(id, winnerTeamID string) error {
	res, err := s.db.Exec(s.dialect.rebind(`UPDATE sessions SET winner_team_id = ?, completed = ? WHERE id = ? AND completed = ?`),
		winnerTeamID, true, id, false,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if rows == 1 {
		return nil
	}
	var exists int
	if err := s.queryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("complete session: %w", err)
	}
	return fmt.Errorf("session %s already completed: %w", id, ErrConflict)
}

const gameColumns = `id, session_id, game_number, round_number, home_team_id, away_team_id, home_score, away_score, completed, played_at`

func (s *sqlStore) GetGame(id string) (model.Game, bool) {
	game, err := scanGameRow(s.queryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if err != nil {
		return model.Game{}, false
	}
	return game, true
}

func (s *sqlStore) CompleteGame(gameID string, home, away int, playedAt time.Time) error {
	res, err := s.db.Exec(s.dialect.rebind(`UPDATE games SET home_score = ?, away_score = ?, completed = ?, played_at = ? WHERE id = ? AND completed = ?`),
		home, away, true, s.dialect.timeArg(playedAt), gameID, false,
	)
	if err != nil {
		return fmt.Errorf("complete game: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 1 {
		return nil
	}
	var exists int
	if err := s.queryRow(`SELECT 1 FROM games WHERE id = ?`, gameID).Scan(&exists); err != nil {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return fmt.Errorf("game %s already completed: %w", gameID, ErrConflict)
}

const goalColumns = `g.id, g.game_id, g.player_id, g.team_id, g.minute, g.goal_type, g.created_at`

func (s *sqlStore) ListGoals(filter model.GoalFilter) []model.Goal {
	q := `SELECT ` + goalColumns + ` FROM goals g
JOIN games gm ON gm.id = g.game_id
JOIN sessions s ON s.id = gm.session_id`
	where := []string{}
	args := []any{}
	if filter.GameID != "" {
		where = append(where, `g.game_id = ?`)
		args = append(args, filter.GameID)
	}
	if filter.PlayerID != "" {
		where = append(where, `g.player_id = ?`)
		args = append(args, filter.PlayerID)
	}
	if filter.SeasonID != "" {
		where = append(where, `s.season_id = ?`)
		args = append(args, filter.SeasonID)
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY s.session_date DESC, gm.game_number ASC, g.minute ASC, g.created_at ASC`

	rows, err := s.query(q, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		goal, err := scanGoalRow(rows)
		if err != nil {
			continue
		}
		goals = append(goals, goal)
	}
	return goals
}

func (s *sqlStore) GetGoal(id string) (model.Goal, bool) {
	goal, err := scanGoalRow(s.queryRow(`SELECT `+goalColumns+` FROM goals g WHERE g.id = ?`, id))
	if err != nil {
		return model.Goal{}, false
	}
	return goal, true
}

func (s *sqlStore) RecordGoal(goal model.Goal) (model.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return model.Goal{}, fmt.Errorf("begin record goal tx: %w", err)
	}
	defer tx.Rollback()

	column, err := s.scoreColumn(tx, goal.GameID, goal.TeamID)
	if err != nil {
		return model.Goal{}, err
	}
	if _, err := tx.Exec(s.dialect.rebind(`UPDATE games SET `+column+` = COALESCE(`+column+`, 0) + 1 WHERE id = ?`), goal.GameID); err != nil {
		return model.Goal{}, fmt.Errorf("increment score: %w", err)
	}
	_, err = tx.Exec(s.dialect.rebind(`INSERT INTO goals (id, game_id, player_id, team_id, minute, goal_type, created_at) VALUES (?,?,?,?,?,?,?)`),
		goal.ID, goal.GameID, goal.PlayerID, goal.TeamID, goal.Minute, string(goal.Type), s.dialect.timeArg(goal.CreatedAt),
	)
	if err != nil {
		return model.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Goal{}, fmt.Errorf("commit record goal tx: %w", err)
	}
	return goal, nil
}

func (s *sqlStore) DeleteGoal(id string) (model.Goal, error) {
	goal, ok := s.GetGoal(id)
	if !ok {
		return model.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return model.Goal{}, fmt.Errorf("begin delete goal tx: %w", err)
	}
	defer tx.Rollback()

	column, err := s.scoreColumn(tx, goal.GameID, goal.TeamID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.Goal{}, err
	}
	if column != "" {
		q := `UPDATE games SET ` + column + ` = CASE WHEN COALESCE(` + column + `, 0) > 0 THEN ` + column + ` - 1 ELSE 0 END WHERE id = ?`
		if _, err := tx.Exec(s.dialect.rebind(q), goal.GameID); err != nil {
			return model.Goal{}, fmt.Errorf("decrement score: %w", err)
		}
	}
	if _, err := tx.Exec(s.dialect.rebind(`DELETE FROM goals WHERE id = ?`), id); err != nil {
		return model.Goal{}, fmt.Errorf("delete goal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Goal{}, fmt.Errorf("commit delete goal tx: %w", err)
	}
	return goal, nil
}

// scoreColumn picks the score column a goal for teamID counts towards and
// refuses games that are already completed.
func (s *sqlStore) scoreColumn(tx *sql.Tx, gameID, teamID string) (string, error) {
	var homeID, awayID string
	var completed bool
	err := tx.QueryRow(s.dialect.rebind(`SELECT home_team_id, away_team_id, completed FROM games WHERE id = ?`), gameID).
		Scan(&homeID, &awayID, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		return "", fmt.Errorf("load game %s: %w", gameID, err)
	}
	if completed {
		return "", fmt.Errorf("game %s already completed: %w", gameID, ErrConflict)
	}
	switch teamID {
	case homeID:
		return "home_score", nil
	case awayID:
		return "away_score", nil
	}
	return "", fmt.Errorf("team %s is not playing game %s: %w", teamID, gameID, ErrConflict)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPlayerRow(scanner rowScanner) (model.Player, error) {
	var p model.Player
	var jersey sql.NullInt64
	var createdAt sql.NullString
	if err := scanner.Scan(&p.ID, &p.Name, &jersey, &p.IsFormalMember, &createdAt); err != nil {
		return model.Player{}, err
	}
	if jersey.Valid {
		n := int(jersey.Int64)
		p.JerseyNumber = &n
	}
	p.CreatedAt = parseNullTime(createdAt)
	return p, nil
}

func scanSeasonRow(scanner rowScanner) (model.Season, error) {
	var season model.Season
	var startDate, endDate, createdAt sql.NullString
	if err := scanner.Scan(&season.ID, &season.Name, &startDate, &endDate, &season.IsActive, &createdAt); err != nil {
		return model.Season{}, err
	}
	season.StartDate = parseNullTime(startDate)
	season.EndDate = parseNullTime(endDate)
	season.CreatedAt = parseNullTime(createdAt)
	return season, nil
}

func scanSessionRow(scanner rowScanner) (model.Session, error) {
	var session model.Session
	var winner, date, createdAt sql.NullString
	if err := scanner.Scan(&session.ID, &session.SeasonID, &session.Name, &date, &winner, &session.Completed, &createdAt); err != nil {
		return model.Session{}, err
	}
	session.Date = parseNullTime(date)
	session.WinnerTeamID = winner.String
	session.CreatedAt = parseNullTime(createdAt)
	return session, nil
}

func scanGameRow(scanner rowScanner) (model.Game, error) {
	var game model.Game
	var homeScore, awayScore sql.NullInt64
	var playedAt sql.NullString
	if err := scanner.Scan(
		&game.ID,
		&game.SessionID,
		&game.Number,
		&game.Round,
		&game.HomeTeamID,
		&game.AwayTeamID,
		&homeScore,
		&awayScore,
		&game.Completed,
		&playedAt,
	); err != nil {
		return model.Game{}, err
	}
	if homeScore.Valid {
		n := int(homeScore.Int64)
		game.HomeScore = &n
	}
	if awayScore.Valid {
		n := int(awayScore.Int64)
		game.AwayScore = &n
	}
	if t := parseNullTime(playedAt); !t.IsZero() {
		game.PlayedAt = &t
	}
	return game, nil
}

func scanGoalRow(scanner rowScanner) (model.Goal, error) {
	var goal model.Goal
	var goalType string
	var createdAt sql.NullString
	if err := scanner.Scan(&goal.ID, &goal.GameID, &goal.PlayerID, &goal.TeamID, &goal.Minute, &goalType, &createdAt); err != nil {
		return model.Goal{}, err
	}
	goal.Type = model.GoalType(goalType)
	goal.CreatedAt = parseNullTime(createdAt)
	return goal, nil
}

func intPtrArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullTime(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	parsed, _ := parseTimeString(value.String)
	return parsed
}

func parseTimeString(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

func toJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}
