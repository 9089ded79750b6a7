package domain

import (
	"errors"
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionArchived SessionStatus = "ARCHIVED"
)

var (
	ErrSessionArchived = errors.New("session is archived")
	ErrRoundNotFound   = errors.New("round not found")
)

type Session struct {
	ID           string
	Date         time.Time
	Participants []string
	Rounds       []Round
	Status       SessionStatus
}

func NewSession(id string, date time.Time, participants []string) Session {
	roster := make([]string, len(participants))
	copy(roster, participants)
	return Session{
		ID:           id,
		Date:         date,
		Participants: roster,
		Status:       SessionActive,
	}
}

func (s Session) Archived() bool {
	return s.Status == SessionArchived
}

// WithRound returns a copy of s with r appended.
func (s Session) WithRound(r Round) (Session, error) {
	if s.Archived() {
		return Session{}, ErrSessionArchived
	}
	rounds := make([]Round, len(s.Rounds), len(s.Rounds)+1)
	copy(rounds, s.Rounds)
	s.Rounds = append(rounds, r)
	return s, nil
}

// WithUpdatedRound returns a copy of s with the round of the same number replaced.
func (s Session) WithUpdatedRound(r Round) (Session, error) {
	rounds := make([]Round, len(s.Rounds))
	copy(rounds, s.Rounds)
	for i := range rounds {
		if rounds[i].Number == r.Number {
			rounds[i] = r
			s.Rounds = rounds
			return s, nil
		}
	}
	return Session{}, fmt.Errorf("%w: %d", ErrRoundNotFound, r.Number)
}

func (s Session) Round(number int) (Round, error) {
	for _, r := range s.Rounds {
		if r.Number == number {
			return r, nil
		}
	}
	return Round{}, fmt.Errorf("%w: %d", ErrRoundNotFound, number)
}

// Archive returns an archived copy of s. Archiving twice is a no-op.
func (s Session) Archive() Session {
	s.Status = SessionArchived
	return s
}
