package domain

import (
	"errors"
	"fmt"
)

type RankingMode string

const (
	RankingClassic      RankingMode = "CLASSIC"
	RankingProportional RankingMode = "PROPORTIONAL"
)

var ErrInvalidSettings = errors.New("invalid ranking settings")

// ClassicParams apply a fixed bonus once the margin reaches MarginThreshold.
type ClassicParams struct {
	KBase           float64
	BonusFactor     float64
	MarginThreshold int
}

// ProportionalParams ramp the bonus linearly up to SaturationMargin.
type ProportionalParams struct {
	KBase            float64
	BonusFactor      float64
	SaturationMargin int
}

// RankingSettings is an immutable snapshot. Mode selects which parameter set applies.
type RankingSettings struct {
	Mode         RankingMode
	Classic      ClassicParams
	Proportional ProportionalParams
}

func DefaultRankingSettings() RankingSettings {
	return RankingSettings{
		Mode: RankingClassic,
		Classic: ClassicParams{
			KBase:           12,
			BonusFactor:     1.25,
			MarginThreshold: 7,
		},
		Proportional: ProportionalParams{
			KBase:            12,
			BonusFactor:      1.25,
			SaturationMargin: 10,
		},
	}
}

func ParseRankingMode(s string) (RankingMode, error) {
	switch m := RankingMode(s); m {
	case RankingClassic, RankingProportional:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, s)
}

func (s RankingSettings) Validate() error {
	var err error
	switch s.Mode {
	case RankingClassic:
		if s.Classic.KBase <= 0 {
			err = errors.Join(err, fmt.Errorf("%w: classic k base must be positive", ErrInvalidSettings))
		}
		if s.Classic.BonusFactor < 1 {
			err = errors.Join(err, fmt.Errorf("%w: classic bonus factor must be at least 1", ErrInvalidSettings))
		}
		if s.Classic.MarginThreshold < 0 {
			err = errors.Join(err, fmt.Errorf("%w: classic margin threshold must not be negative", ErrInvalidSettings))
		}
	case RankingProportional:
		if s.Proportional.KBase <= 0 {
			err = errors.Join(err, fmt.Errorf("%w: proportional k base must be positive", ErrInvalidSettings))
		}
		if s.Proportional.BonusFactor < 1 {
			err = errors.Join(err, fmt.Errorf("%w: proportional bonus factor must be at least 1", ErrInvalidSettings))
		}
		if s.Proportional.SaturationMargin <= 0 {
			err = errors.Join(err, fmt.Errorf("%w: saturation margin must be positive", ErrInvalidSettings))
		}
	default:
		err = fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, s.Mode)
	}
	return err
}
