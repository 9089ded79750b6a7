package elo

import (
	"math"
	"testing"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestDelta(t *testing.T) {
	type args struct {
		Ra float64
		Rb float64
		K  float64
		Sa Points
	}
	tests := []struct {
		name string
		args args
		want float64
	}{
		{
			name: "same rating draw",
			args: args{Ra: 1000, Rb: 1000, K: 40, Sa: Draw},
			want: 0,
		},
		{
			name: "same rating win",
			args: args{Ra: 1000, Rb: 1000, K: 40, Sa: Win},
			want: 20,
		},
		{
			name: "same rating lose",
			args: args{Ra: 1000, Rb: 1000, K: 40, Sa: Lose},
			want: -20,
		},
		{
			name: "top rating draw",
			args: args{Ra: 1100, Rb: 1000, K: 40, Sa: Draw},
			want: -6,
		},
		{
			name: "top rating win",
			args: args{Ra: 1100, Rb: 1000, K: 40, Sa: Win},
			want: 14,
		},
		{
			name: "bottom rating win",
			args: args{Ra: 1000, Rb: 1100, K: 40, Sa: Win},
			want: 26,
		},
		{
			name: "bottom rating lose",
			args: args{Ra: 1000, Rb: 1100, K: 40, Sa: Lose},
			want: -14,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := math.Round(Delta(tt.args.Ra, tt.args.Rb, tt.args.K, tt.args.Sa))
			if got != tt.want {
				t.Errorf("Delta() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffectiveKClassic(t *testing.T) {
	s := domain.DefaultRankingSettings()
	tests := []struct {
		name   string
		margin int
		want   float64
	}{
		{name: "no margin", margin: 0, want: 12},
		{name: "below threshold", margin: 6, want: 12},
		{name: "at threshold", margin: 7, want: 15},
		{name: "above threshold", margin: 15, want: 15},
		{name: "negative margin", margin: -7, want: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveK(tt.margin, s))
		})
	}
}

func TestEffectiveKProportional(t *testing.T) {
	s := domain.DefaultRankingSettings()
	s.Mode = domain.RankingProportional
	s.Proportional = domain.ProportionalParams{KBase: 10, BonusFactor: 2, SaturationMargin: 10}

	prev := 0.0
	for margin := 0; margin <= 30; margin++ {
		k := EffectiveK(margin, s)
		require.GreaterOrEqual(t, k, prev, "margin %d", margin)
		prev = k
		if margin >= 10 {
			assert.InDelta(t, 20, k, eps)
		}
	}
	assert.InDelta(t, 10, EffectiveK(0, s), eps)
	assert.InDelta(t, 15, EffectiveK(5, s), eps)
}
