package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/migrate"
	"github.com/goserg/doublesrating/internal/storage"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.Storage = (*Storage)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(l *logrus.Logger, fileName string) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "sqlite-storage",
	})
	db, err := sql.Open("sqlite3", buildSource(fileName))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	err = migrate.Up(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("file", fileName).Info("storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

func buildSource(fileName string) string {
	return "file:" + fileName + "?cache=shared&_foreign_keys=on"
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.log.WithError(rerr).Error("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "UNIQUE constraint failed")
}

const playerColumns = `id, name, gender, base_points, match_points, wins, losses, hidden, created_at`

func scanPlayer(row interface{ Scan(...any) error }) (domain.Player, error) {
	var (
		p      domain.Player
		gender string
	)
	err := row.Scan(&p.ID, &p.Name, &gender, &p.BasePoints, &p.MatchPoints, &p.Wins, &p.Losses, &p.Hidden, &p.RegisteredAt)
	if err != nil {
		return domain.Player{}, err
	}
	p.Gender = domain.Gender(gender)
	return p, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	return p, err
}

func (s *Storage) AddPlayer(ctx context.Context, p domain.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (`+playerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Gender), p.BasePoints, p.MatchPoints, p.Wins, p.Losses, p.Hidden, p.RegisteredAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("player %s: %w", p.Name, storage.ErrDuplicate)
	}
	return err
}

func (s *Storage) UpdatePlayers(ctx context.Context, players []domain.Player) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return updatePlayers(ctx, tx, players)
	})
}

func updatePlayers(ctx context.Context, q querier, players []domain.Player) error {
	for _, p := range players {
		res, err := q.ExecContext(ctx,
			`UPDATE players
			SET name = ?, gender = ?, base_points = ?, match_points = ?, wins = ?, losses = ?, hidden = ?
			WHERE id = ?`,
			p.Name, string(p.Gender), p.BasePoints, p.MatchPoints, p.Wins, p.Losses, p.Hidden, p.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("player %s: %w", p.ID, storage.ErrNotFound)
		}
	}
	return nil
}

func (s *Storage) GetSettings(ctx context.Context) (domain.RankingSettings, bool, error) {
	var (
		st   domain.RankingSettings
		mode string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT mode,
		       classic_k_base, classic_bonus_factor, classic_margin_threshold,
		       proportional_k_base, proportional_bonus_factor, proportional_saturation_margin
		FROM ranking_settings WHERE id = 1`,
	).Scan(&mode,
		&st.Classic.KBase, &st.Classic.BonusFactor, &st.Classic.MarginThreshold,
		&st.Proportional.KBase, &st.Proportional.BonusFactor, &st.Proportional.SaturationMargin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RankingSettings{}, false, nil
	}
	if err != nil {
		return domain.RankingSettings{}, false, err
	}
	st.Mode = domain.RankingMode(mode)
	return st, true, nil
}

func (s *Storage) SaveSettings(ctx context.Context, st domain.RankingSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ranking_settings (id, mode,
		    classic_k_base, classic_bonus_factor, classic_margin_threshold,
		    proportional_k_base, proportional_bonus_factor, proportional_saturation_margin)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		    mode = excluded.mode,
		    classic_k_base = excluded.classic_k_base,
		    classic_bonus_factor = excluded.classic_bonus_factor,
		    classic_margin_threshold = excluded.classic_margin_threshold,
		    proportional_k_base = excluded.proportional_k_base,
		    proportional_bonus_factor = excluded.proportional_bonus_factor,
		    proportional_saturation_margin = excluded.proportional_saturation_margin`,
		string(st.Mode),
		st.Classic.KBase, st.Classic.BonusFactor, st.Classic.MarginThreshold,
		st.Proportional.KBase, st.Proportional.BonusFactor, st.Proportional.SaturationMargin,
	)
	return err
}

func (s *Storage) ApplyRecalculation(ctx context.Context, players []domain.Player, sessions []domain.Session) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := updatePlayers(ctx, tx, players); err != nil {
			return err
		}
		for _, session := range sessions {
			for _, r := range session.Rounds {
				for i, m := range r.Matches {
					if err := upsertMatch(ctx, tx, session.ID, r.Number, i, m); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"players":  len(players),
		"sessions": len(sessions),
	}).Info("recalculation applied")
	return nil
}
