package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/storage"
)

func (s *Storage) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := loadSession(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (domain.Session, error) {
	return loadSession(ctx, s.db, id)
}

func loadSession(ctx context.Context, q querier, id string) (domain.Session, error) {
	var (
		session domain.Session
		status  string
	)
	err := q.QueryRowContext(ctx, `SELECT id, date, status FROM sessions WHERE id = ?`, id).
		Scan(&session.ID, &session.Date, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, err
	}
	session.Status = domain.SessionStatus(status)

	session.Participants, err = loadParticipants(ctx, q, id)
	if err != nil {
		return domain.Session{}, err
	}
	session.Rounds, err = loadRounds(ctx, q, id)
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func loadParticipants(ctx context.Context, q querier, sessionID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT player_id FROM session_participants WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadRounds(ctx context.Context, q querier, sessionID string) ([]domain.Round, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT number, mode, resting FROM rounds WHERE session_id = ? ORDER BY number`, sessionID)
	if err != nil {
		return nil, err
	}
	var rounds []domain.Round
	for rows.Next() {
		var (
			r       domain.Round
			mode    string
			resting string
		)
		if err := rows.Scan(&r.Number, &mode, &resting); err != nil {
			rows.Close()
			return nil, err
		}
		r.Mode = domain.Mode(mode)
		if err := json.Unmarshal([]byte(resting), &r.Resting); err != nil {
			rows.Close()
			return nil, fmt.Errorf("round %d resting: %w", r.Number, err)
		}
		rounds = append(rounds, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rounds {
		rounds[i].Matches, err = loadMatches(ctx, q, sessionID, rounds[i].Number)
		if err != nil {
			return nil, err
		}
	}
	return rounds, nil
}

func loadMatches(ctx context.Context, q querier, sessionID string, roundNumber int) ([]domain.Match, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, mode, status, team_a_1, team_a_2, team_b_1, team_b_2,
		       score_a, score_b, deltas, aggregate_delta, created_at
		FROM matches
		WHERE session_id = ? AND round_number = ?
		ORDER BY position`, sessionID, roundNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var (
			m              domain.Match
			mode, status   string
			scoreA, scoreB sql.NullInt64
			deltas         sql.NullString
		)
		err := rows.Scan(&m.ID, &mode, &status,
			&m.TeamA.Players[0], &m.TeamA.Players[1], &m.TeamB.Players[0], &m.TeamB.Players[1],
			&scoreA, &scoreB, &deltas, &m.AggregateDelta, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		m.Mode = domain.Mode(mode)
		m.Status = domain.MatchStatus(status)
		if scoreA.Valid {
			v := int(scoreA.Int64)
			m.TeamA.Score = &v
		}
		if scoreB.Valid {
			v := int(scoreB.Int64)
			m.TeamB.Score = &v
		}
		if deltas.Valid {
			if err := json.Unmarshal([]byte(deltas.String), &m.IndividualDeltas); err != nil {
				return nil, fmt.Errorf("match %s deltas: %w", m.ID, err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Storage) CreateSession(ctx context.Context, session domain.Session) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO sessions (id, date, status) VALUES (?, ?, ?)`,
			session.ID, session.Date, string(session.Status))
		if isUniqueViolation(err) {
			return fmt.Errorf("session %s: %w", session.ID, storage.ErrDuplicate)
		}
		if err != nil {
			return err
		}
		for i, id := range session.Participants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO session_participants (session_id, player_id, position) VALUES (?, ?, ?)`,
				session.ID, id, i)
			if err != nil {
				return err
			}
		}
		for _, r := range session.Rounds {
			if err := insertRound(ctx, tx, session.ID, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) SetSessionStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Storage) SaveRound(ctx context.Context, sessionID string, round domain.Round) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertRound(ctx, tx, sessionID, round)
	})
}

func insertRound(ctx context.Context, q querier, sessionID string, round domain.Round) error {
	resting := round.Resting
	if resting == nil {
		resting = []string{}
	}
	restingJSON, err := json.Marshal(resting)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO rounds (session_id, number, mode, resting) VALUES (?, ?, ?, ?)`,
		sessionID, round.Number, string(round.Mode), string(restingJSON))
	if isUniqueViolation(err) {
		return fmt.Errorf("round %d of session %s: %w", round.Number, sessionID, storage.ErrDuplicate)
	}
	if err != nil {
		return err
	}
	for i, m := range round.Matches {
		if err := upsertMatch(ctx, q, sessionID, round.Number, i, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) UpdateMatch(ctx context.Context, sessionID string, roundNumber int, match domain.Match, players []domain.Player) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var position int
		err := tx.QueryRowContext(ctx,
			`SELECT position FROM matches WHERE id = ? AND session_id = ? AND round_number = ?`,
			match.ID, sessionID, roundNumber).Scan(&position)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("match %s: %w", match.ID, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := upsertMatch(ctx, tx, sessionID, roundNumber, position, match); err != nil {
			return err
		}
		return updatePlayers(ctx, tx, players)
	})
}

func upsertMatch(ctx context.Context, q querier, sessionID string, roundNumber, position int, m domain.Match) error {
	var (
		scoreA, scoreB sql.NullInt64
		deltas         sql.NullString
	)
	if m.TeamA.Score != nil {
		scoreA = sql.NullInt64{Int64: int64(*m.TeamA.Score), Valid: true}
	}
	if m.TeamB.Score != nil {
		scoreB = sql.NullInt64{Int64: int64(*m.TeamB.Score), Valid: true}
	}
	if m.IndividualDeltas != nil {
		b, err := json.Marshal(m.IndividualDeltas)
		if err != nil {
			return err
		}
		deltas = sql.NullString{String: string(b), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO matches (id, session_id, round_number, position, mode, status,
		    team_a_1, team_a_2, team_b_1, team_b_2, score_a, score_b, deltas, aggregate_delta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		    status = excluded.status,
		    team_a_1 = excluded.team_a_1,
		    team_a_2 = excluded.team_a_2,
		    team_b_1 = excluded.team_b_1,
		    team_b_2 = excluded.team_b_2,
		    score_a = excluded.score_a,
		    score_b = excluded.score_b,
		    deltas = excluded.deltas,
		    aggregate_delta = excluded.aggregate_delta`,
		m.ID, sessionID, roundNumber, position, string(m.Mode), string(m.Status),
		m.TeamA.Players[0], m.TeamA.Players[1], m.TeamB.Players[0], m.TeamB.Players[1],
		scoreA, scoreB, deltas, m.AggregateDelta, m.CreatedAt,
	)
	return err
}
