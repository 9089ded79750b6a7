package domain

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Mode selects how a round's teams are formed.
type Mode string

const (
	ModeCustom        Mode = "CUSTOM"
	ModeSameLevel     Mode = "SAME_LEVEL"
	ModeBalancedPairs Mode = "BALANCED_PAIRS"
	ModeSplitBalanced Mode = "SPLIT_BALANCED"
	ModeRandom        Mode = "RANDOM"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCustom, ModeSameLevel, ModeBalancedPairs, ModeSplitBalanced, ModeRandom:
		return m, nil
	}
	return "", fmt.Errorf("unknown round mode %q", s)
}

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrBadRoster     = errors.New("round does not cover the roster")
)

type Round struct {
	Number  int
	Matches []Match
	Resting []string
	Mode    Mode
}

func (r Round) Match(id string) (Match, bool) {
	for _, m := range r.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

// WithMatch returns a copy of r where the match with the same ID is replaced.
func (r Round) WithMatch(m Match) (Round, error) {
	matches := make([]Match, len(r.Matches))
	copy(matches, r.Matches)
	for i := range matches {
		if matches[i].ID == m.ID {
			matches[i] = m
			r.Matches = matches
			return r, nil
		}
	}
	return Round{}, fmt.Errorf("%w: %s", ErrMatchNotFound, m.ID)
}

// Validate checks that every participant is either resting or placed in
// exactly one match slot, and nobody else is. Unassigned slots are allowed.
func (r Round) Validate(participants []string) error {
	roster := mapset.NewThreadUnsafeSet[string](participants...)
	seen := mapset.NewThreadUnsafeSet[string]()
	var err error
	place := func(id string) {
		if id == "" {
			return
		}
		if !roster.Contains(id) {
			err = errors.Join(err, fmt.Errorf("%w: %s is not a participant", ErrBadRoster, id))
			return
		}
		if !seen.Add(id) {
			err = errors.Join(err, fmt.Errorf("%w: %s appears twice", ErrBadRoster, id))
		}
	}
	for _, id := range r.Resting {
		place(id)
	}
	assigned := true
	for _, m := range r.Matches {
		for _, id := range m.PlayerIDs() {
			if id == "" {
				assigned = false
			}
			place(id)
		}
	}
	if assigned && len(r.Matches)*4+len(r.Resting) != roster.Cardinality() {
		err = errors.Join(err, fmt.Errorf("%w: %d matches and %d resting for %d participants",
			ErrBadRoster, len(r.Matches), len(r.Resting), roster.Cardinality()))
	}
	return err
}
