package elo

import (
	"testing"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/stretchr/testify/assert"
)

func player(id string, base, match float64) domain.Player {
	return domain.Player{ID: id, BasePoints: base, MatchPoints: match}
}

func fourAt(rating float64) (domain.Player, domain.Player, domain.Player, domain.Player) {
	return player("a", rating, 0), player("b", rating, 0), player("c", rating, 0), player("d", rating, 0)
}

func TestCalculateNewRatings(t *testing.T) {
	tests := []struct {
		name      string
		s1, s2    int
		wantK     float64
		wantDelta [4]float64
		wantAgg   int
	}{
		{
			name:      "below margin threshold",
			s1:        21,
			s2:        15,
			wantK:     12,
			wantDelta: [4]float64{6, 6, -6, -6},
			wantAgg:   6,
		},
		{
			name:      "margin bonus",
			s1:        21,
			s2:        10,
			wantK:     15,
			wantDelta: [4]float64{7.5, 7.5, -7.5, -7.5},
			wantAgg:   8,
		},
		{
			name:      "team b wins",
			s1:        12,
			s2:        21,
			wantK:     15,
			wantDelta: [4]float64{-7.5, -7.5, 7.5, 7.5},
			wantAgg:   8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p1, p2, p3, p4 := fourAt(1000)
			got := CalculateNewRatings(p1, p2, p3, p4, tt.s1, tt.s2, nil)
			assert.Equal(t, tt.wantK, got.EffectiveK)
			assert.Equal(t, tt.wantAgg, got.AggregateDelta)
			for i := range tt.wantDelta {
				assert.InDelta(t, tt.wantDelta[i], got.Deltas[i], eps)
				assert.InDelta(t, tt.wantDelta[i], got.Players[i].MatchPoints, eps)
			}
		})
	}
}

func TestCalculateNewRatingsCounters(t *testing.T) {
	p1, p2, p3, p4 := fourAt(1000)
	got := CalculateNewRatings(p1, p2, p3, p4, 21, 19, nil)
	for i, p := range got.Players {
		if i < 2 {
			assert.Equal(t, 1, p.Wins)
			assert.Zero(t, p.Losses)
		} else {
			assert.Zero(t, p.Wins)
			assert.Equal(t, 1, p.Losses)
		}
	}
	// inputs are values and stay untouched
	assert.Zero(t, p1.MatchPoints)
	assert.Zero(t, p1.Wins)
}

func TestCalculateNewRatingsTie(t *testing.T) {
	// equal combined ratings on both sides
	p1 := player("a", 1100, 0)
	p2 := player("b", 900, 0)
	p3 := player("c", 1000, 0)
	p4 := player("d", 1000, 0)

	got := CalculateNewRatings(p1, p2, p3, p4, 15, 15, nil)
	for i, p := range got.Players {
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
		if i >= 2 {
			assert.InDelta(t, 0, got.Deltas[i], eps)
		}
	}
	// teammates are judged individually against the same opponent average
	assert.Less(t, got.Deltas[0], 0.0)
	assert.Greater(t, got.Deltas[1], 0.0)

	q1, q2, q3, q4 := fourAt(1000)
	even := CalculateNewRatings(q1, q2, q3, q4, 9, 9, nil)
	for i := range even.Deltas {
		assert.InDelta(t, 0, even.Deltas[i], eps)
	}
}

func TestCalculateNewRatingsTieIsNotNoop(t *testing.T) {
	strong1, strong2 := player("a", 1200, 0), player("b", 1200, 0)
	weak1, weak2 := player("c", 1000, 0), player("d", 1000, 0)

	got := CalculateNewRatings(strong1, strong2, weak1, weak2, 10, 10, nil)
	assert.Less(t, got.Deltas[0], 0.0)
	assert.Greater(t, got.Deltas[2], 0.0)
}

func TestUpsetGivesLargerDelta(t *testing.T) {
	strong1, strong2 := player("a", 1200, 0), player("b", 1200, 0)
	weak1, weak2 := player("c", 1000, 0), player("d", 1000, 0)

	expectedWin := CalculateNewRatings(strong1, strong2, weak1, weak2, 21, 17, nil)
	upset := CalculateNewRatings(weak1, weak2, strong1, strong2, 21, 17, nil)

	assert.Greater(t, expectedWin.Deltas[0], 0.0)
	assert.Greater(t, upset.Deltas[0], 0.0)
	assert.Less(t, expectedWin.Deltas[0], upset.Deltas[0])
}

func TestCalculateNewRatingsProportional(t *testing.T) {
	settings := domain.DefaultRankingSettings()
	settings.Mode = domain.RankingProportional
	settings.Proportional = domain.ProportionalParams{KBase: 12, BonusFactor: 1.5, SaturationMargin: 10}

	p1, p2, p3, p4 := fourAt(1000)
	half := CalculateNewRatings(p1, p2, p3, p4, 21, 16, &settings)
	assert.InDelta(t, 15, half.EffectiveK, eps)
	assert.InDelta(t, 7.5, half.Deltas[0], eps)

	capped := CalculateNewRatings(p1, p2, p3, p4, 21, 0, &settings)
	assert.InDelta(t, 18, capped.EffectiveK, eps)
}

func TestDeltasByID(t *testing.T) {
	p1, p2, p3, p4 := fourAt(1000)
	got := CalculateNewRatings(p1, p2, p3, p4, 21, 15, nil).DeltasByID()
	assert.Equal(t, map[string]float64{"a": 6, "b": 6, "c": -6, "d": -6}, got)
}
