package domain

import (
	"errors"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchCompleted MatchStatus = "COMPLETED"
)

var (
	ErrInvalidScore    = errors.New("invalid score")
	ErrMatchNotPending = errors.New("match is already completed")
	ErrMatchNotDone    = errors.New("match is not completed")
)

// Team is an unordered pair of player IDs. An empty ID marks an unassigned slot.
type Team struct {
	Players [2]string
	Score   *int
}

func NewTeam(a, b string) Team {
	return Team{Players: [2]string{a, b}}
}

func (t Team) Has(id string) bool {
	return id != "" && (t.Players[0] == id || t.Players[1] == id)
}

func (t Team) Assigned() bool {
	return t.Players[0] != "" && t.Players[1] != ""
}

type Match struct {
	ID        string
	TeamA     Team
	TeamB     Team
	Status    MatchStatus
	Mode      Mode
	CreatedAt time.Time

	// IndividualDeltas is keyed by player ID and is set only while COMPLETED.
	IndividualDeltas map[string]float64
	AggregateDelta   int
}

// PlayerIDs returns the four slots in order: team A first, then team B.
func (m Match) PlayerIDs() [4]string {
	return [4]string{m.TeamA.Players[0], m.TeamA.Players[1], m.TeamB.Players[0], m.TeamB.Players[1]}
}

func (m Match) Completed() bool {
	return m.Status == MatchCompleted
}

func (m Match) Scores() (int, int, bool) {
	if m.TeamA.Score == nil || m.TeamB.Score == nil {
		return 0, 0, false
	}
	return *m.TeamA.Score, *m.TeamB.Score, true
}

// WithResult returns a completed copy of m carrying the scores and deltas.
func (m Match) WithResult(score1, score2 int, deltas map[string]float64, aggregate int) Match {
	s1, s2 := score1, score2
	m.TeamA.Score = &s1
	m.TeamB.Score = &s2
	m.Status = MatchCompleted
	m.IndividualDeltas = make(map[string]float64, len(deltas))
	for id, d := range deltas {
		m.IndividualDeltas[id] = d
	}
	m.AggregateDelta = aggregate
	return m
}

// Reopened returns a pending copy of m with score and deltas cleared.
// It does not touch player state.
func (m Match) Reopened() Match {
	m.TeamA.Score = nil
	m.TeamB.Score = nil
	m.Status = MatchPending
	m.IndividualDeltas = nil
	m.AggregateDelta = 0
	return m
}

// WithTeams returns a copy of m with both teams replaced. Scores are dropped.
func (m Match) WithTeams(a, b Team) Match {
	m.TeamA = Team{Players: a.Players}
	m.TeamB = Team{Players: b.Players}
	return m
}

// ValidateScores checks scores entered for a match.
func ValidateScores(score1, score2 *int) error {
	var err error
	if score1 == nil && score2 == nil {
		return fmt.Errorf("%w: both scores are missing", ErrInvalidScore)
	}
	if score1 == nil {
		err = errors.Join(err, fmt.Errorf("%w: first score is missing", ErrInvalidScore))
	} else if *score1 < 0 {
		err = errors.Join(err, fmt.Errorf("%w: first score is negative", ErrInvalidScore))
	}
	if score2 == nil {
		err = errors.Join(err, fmt.Errorf("%w: second score is missing", ErrInvalidScore))
	} else if *score2 < 0 {
		err = errors.Join(err, fmt.Errorf("%w: second score is negative", ErrInvalidScore))
	}
	return err
}
