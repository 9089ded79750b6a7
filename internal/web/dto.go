package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/glicko"
	"github.com/goserg/doublesrating/internal/recalc"
)

var (
	ErrMissingName         = errors.New("player name must not be empty")
	ErrWrongGender         = errors.New("gender must be M or F")
	ErrNegativeBase        = errors.New("base points must not be negative")
	ErrNoParticipants      = errors.New("session needs participants")
	ErrMissingParticipant  = errors.New("participant id must not be empty")
	ErrMissingTeamPlayer   = errors.New("every team slot must be filled")
	ErrMissingHiddenStatus = errors.New("hidden flag is required")
)

type createPlayer struct {
	Name       string  `json:"name"`
	Gender     string  `json:"gender"`
	BasePoints float64 `json:"basePoints"`
}

func (c createPlayer) Validate() error {
	var err error
	if c.Name == "" {
		err = errors.Join(err, ErrMissingName)
	}
	if g := domain.Gender(c.Gender); g != domain.Male && g != domain.Female {
		err = errors.Join(err, ErrWrongGender)
	}
	if c.BasePoints < 0 {
		err = errors.Join(err, ErrNegativeBase)
	}
	return err
}

type setHidden struct {
	Hidden *bool `json:"hidden"`
}

func (s setHidden) Validate() error {
	if s.Hidden == nil {
		return ErrMissingHiddenStatus
	}
	return nil
}

type startSession struct {
	Date         *time.Time `json:"date"`
	Participants []string   `json:"participants"`
}

func (s startSession) Validate() error {
	if len(s.Participants) == 0 {
		return ErrNoParticipants
	}
	for _, id := range s.Participants {
		if id == "" {
			return ErrMissingParticipant
		}
	}
	return nil
}

func (s startSession) date() time.Time {
	if s.Date == nil {
		return time.Time{}
	}
	return *s.Date
}

type generateRound struct {
	Mode string `json:"mode"`
}

func (g generateRound) Validate() error {
	_, err := domain.ParseMode(g.Mode)
	return err
}

type submitScore struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

func (s submitScore) Validate() error {
	return domain.ValidateScores(s.Score1, s.Score2)
}

type assignTeams struct {
	TeamA [2]string `json:"teamA"`
	TeamB [2]string `json:"teamB"`
}

func (a assignTeams) Validate() error {
	for _, id := range append(a.TeamA[:], a.TeamB[:]...) {
		if id == "" {
			return ErrMissingTeamPlayer
		}
	}
	return nil
}

type classicSettings struct {
	KBase           float64 `json:"kBase"`
	BonusFactor     float64 `json:"bonusFactor"`
	MarginThreshold int     `json:"marginThreshold"`
}

type proportionalSettings struct {
	KBase            float64 `json:"kBase"`
	BonusFactor      float64 `json:"bonusFactor"`
	SaturationMargin int     `json:"saturationMargin"`
}

type settingsDTO struct {
	Mode         string               `json:"mode"`
	Classic      classicSettings      `json:"classic"`
	Proportional proportionalSettings `json:"proportional"`
}

func (s settingsDTO) Validate() error {
	return s.toDomain().Validate()
}

func (s settingsDTO) toDomain() domain.RankingSettings {
	return domain.RankingSettings{
		Mode: domain.RankingMode(s.Mode),
		Classic: domain.ClassicParams{
			KBase:           s.Classic.KBase,
			BonusFactor:     s.Classic.BonusFactor,
			MarginThreshold: s.Classic.MarginThreshold,
		},
		Proportional: domain.ProportionalParams{
			KBase:            s.Proportional.KBase,
			BonusFactor:      s.Proportional.BonusFactor,
			SaturationMargin: s.Proportional.SaturationMargin,
		},
	}
}

func newSettingsDTO(s domain.RankingSettings) settingsDTO {
	return settingsDTO{
		Mode: string(s.Mode),
		Classic: classicSettings{
			KBase:           s.Classic.KBase,
			BonusFactor:     s.Classic.BonusFactor,
			MarginThreshold: s.Classic.MarginThreshold,
		},
		Proportional: proportionalSettings{
			KBase:            s.Proportional.KBase,
			BonusFactor:      s.Proportional.BonusFactor,
			SaturationMargin: s.Proportional.SaturationMargin,
		},
	}
}

type playerDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Gender       string    `json:"gender"`
	BasePoints   float64   `json:"basePoints"`
	MatchPoints  float64   `json:"matchPoints"`
	Rating       float64   `json:"rating"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Hidden       bool      `json:"hidden"`
	RegisteredAt time.Time `json:"registeredAt"`
	Rank         int       `json:"rank,omitempty"`
}

func newPlayerDTO(p domain.Player) playerDTO {
	return playerDTO{
		ID:           p.ID,
		Name:         p.Name,
		Gender:       string(p.Gender),
		BasePoints:   p.BasePoints,
		MatchPoints:  p.MatchPoints,
		Rating:       p.Rating(),
		Wins:         p.Wins,
		Losses:       p.Losses,
		Hidden:       p.Hidden,
		RegisteredAt: p.RegisteredAt,
		Rank:         p.RatingRank,
	}
}

func newPlayerDTOs(players []domain.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, newPlayerDTO(p))
	}
	return out
}

type teamDTO struct {
	Players [2]string `json:"players"`
	Score   *int      `json:"score"`
}

type matchDTO struct {
	ID             string             `json:"id"`
	TeamA          teamDTO            `json:"teamA"`
	TeamB          teamDTO            `json:"teamB"`
	Status         string             `json:"status"`
	Mode           string             `json:"mode"`
	CreatedAt      time.Time          `json:"createdAt"`
	Deltas         map[string]float64 `json:"deltas,omitempty"`
	AggregateDelta int                `json:"aggregateDelta"`
}

func newMatchDTO(m domain.Match) matchDTO {
	return matchDTO{
		ID:             m.ID,
		TeamA:          teamDTO{Players: m.TeamA.Players, Score: m.TeamA.Score},
		TeamB:          teamDTO{Players: m.TeamB.Players, Score: m.TeamB.Score},
		Status:         string(m.Status),
		Mode:           string(m.Mode),
		CreatedAt:      m.CreatedAt,
		Deltas:         m.IndividualDeltas,
		AggregateDelta: m.AggregateDelta,
	}
}

type roundDTO struct {
	Number  int        `json:"number"`
	Mode    string     `json:"mode"`
	Matches []matchDTO `json:"matches"`
	Resting []string   `json:"resting"`
}

func newRoundDTO(r domain.Round) roundDTO {
	matches := make([]matchDTO, 0, len(r.Matches))
	for _, m := range r.Matches {
		matches = append(matches, newMatchDTO(m))
	}
	resting := r.Resting
	if resting == nil {
		resting = []string{}
	}
	return roundDTO{
		Number:  r.Number,
		Mode:    string(r.Mode),
		Matches: matches,
		Resting: resting,
	}
}

type sessionDTO struct {
	ID           string     `json:"id"`
	Date         time.Time  `json:"date"`
	Status       string     `json:"status"`
	Participants []string   `json:"participants"`
	Rounds       []roundDTO `json:"rounds"`
}

func newSessionDTO(s domain.Session) sessionDTO {
	rounds := make([]roundDTO, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		rounds = append(rounds, newRoundDTO(r))
	}
	return sessionDTO{
		ID:           s.ID,
		Date:         s.Date,
		Status:       string(s.Status),
		Participants: s.Participants,
		Rounds:       rounds,
	}
}

type glickoDTO struct {
	PlayerID   string  `json:"playerId"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Rank       int     `json:"rank"`
}

func newGlickoDTOs(ratings []glicko.Rating) []glickoDTO {
	out := make([]glickoDTO, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, glickoDTO{
			PlayerID:   r.PlayerID,
			Name:       r.Name,
			Rating:     r.Rating,
			Deviation:  r.Deviation,
			Volatility: r.Volatility,
			Min:        r.Interval.Min,
			Max:        r.Interval.Max,
			Rank:       r.Rank,
		})
	}
	return out
}

type skippedDTO struct {
	SessionID string `json:"sessionId"`
	Round     int    `json:"round"`
	MatchID   string `json:"matchId"`
	Reason    string `json:"reason"`
}

type recalcDTO struct {
	Replayed int          `json:"replayed"`
	Sessions int          `json:"sessions"`
	Skipped  []skippedDTO `json:"skipped"`
}

func newRecalcDTO(res recalc.Result) recalcDTO {
	out := recalcDTO{
		Replayed: res.Replayed,
		Sessions: len(res.Sessions),
		Skipped:  make([]skippedDTO, 0, len(res.Skipped)),
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, skippedDTO{
			SessionID: s.SessionID,
			Round:     s.Round,
			MatchID:   s.MatchID,
			Reason:    fmt.Sprint(s.Err),
		})
	}
	return out
}
