package fair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashdash-casino-backend/internal/fair"
	"cashdash-casino-backend/internal/models"
)

func TestDiceUnderScenario(t *testing.T) {
	// under(50) at edge 1: multiplier = round(99/50, 4) = 1.98;
	// 49.99 wins, 50.00 itself loses.
	bet := fair.DiceBet{Mode: fair.DiceModeUnder, TargetA: 5000, Edge: 1}

	mult, err := fair.DiceMultiplier(bet)
	require.NoError(t, err)
	assert.Equal(t, 1.98, mult)

	win, err := fair.DiceWins(bet, 4999)
	require.NoError(t, err)
	assert.True(t, win)
	assert.Equal(t, 19.80, models.CalculatePayout(10, 1.98))

	win, err = fair.DiceWins(bet, 5000)
	require.NoError(t, err)
	assert.False(t, win, "the target itself must lose")
}

func TestDiceBoundaryStrictness(t *testing.T) {
	between := fair.DiceBet{Mode: fair.DiceModeBetween, TargetA: 2000, TargetB: 4000, Edge: 1}

	for _, tc := range []struct {
		roll int
		win  bool
	}{
		{2000, false}, // lower bound excluded
		{2001, true},
		{3999, true},
		{4000, false}, // upper bound excluded
	} {
		win, err := fair.DiceWins(between, tc.roll)
		require.NoError(t, err)
		assert.Equal(t, tc.win, win, "between(20,40) roll %d", tc.roll)
	}

	outside := fair.DiceBet{Mode: fair.DiceModeOutside, TargetA: 2000, TargetB: 4000, Edge: 1}
	for _, tc := range []struct {
		roll int
		win  bool
	}{
		{1999, true},
		{2000, false},
		{4000, false},
		{4001, true},
	} {
		win, err := fair.DiceWins(outside, tc.roll)
		require.NoError(t, err)
		assert.Equal(t, tc.win, win, "outside(20,40) roll %d", tc.roll)
	}
}

func TestDiceInvalidMode(t *testing.T) {
	bet := fair.DiceBet{Mode: "coinflip", TargetA: 5000, Edge: 1}

	_, err := fair.DiceMultiplier(bet)
	assert.ErrorIs(t, err, models.ErrInvalidMode)

	_, err = fair.DiceWins(bet, 1234)
	assert.ErrorIs(t, err, models.ErrInvalidMode)
}

// diceBets returns one representative bet per mode.
func diceBets(edge float64) []fair.DiceBet {
	return []fair.DiceBet{
		{Mode: fair.DiceModeUnder, TargetA: 5000, Edge: edge},
		{Mode: fair.DiceModeOver, TargetA: 5000, Edge: edge},
		{Mode: fair.DiceModeBetween, TargetA: 2000, TargetB: 4000, Edge: edge},
		{Mode: fair.DiceModeOutside, TargetA: 2000, TargetB: 4000, Edge: edge},
		{Mode: fair.DiceModeBetweenSets, TargetA: 1000, TargetB: 3000, TargetC: 6000, TargetD: 8000, Edge: edge},
	}
}

func TestDiceAnalyticRTP(t *testing.T) {
	// Sweeping every possible roll at 0.01 resolution, the average payout
	// per unit staked must converge to (100-edge)/100 within 0.005%.
	const edge = 1.0
	want := (100 - edge) / 100

	for _, bet := range diceBets(edge) {
		mult, err := fair.DiceMultiplier(bet)
		require.NoError(t, err)

		total := 0.0
		for roll := 0; roll < fair.RollUnits; roll++ {
			win, err := fair.DiceWins(bet, roll)
			require.NoError(t, err)
			if win {
				total += mult
			}
		}
		rtp := total / fair.RollUnits

		assert.InDelta(t, want, rtp, want*0.00005, "mode %s analytic RTP", bet.Mode)
	}
}

func TestDiceSimulatedRTP(t *testing.T) {
	if testing.Short() {
		t.Skip("simulation is slow")
	}

	// A million derived rolls per mode must converge within 0.5%.
	const edge = 1.0
	const rolls = 1_000_000
	want := (100 - edge) / 100

	for _, bet := range diceBets(edge) {
		mult, err := fair.DiceMultiplier(bet)
		require.NoError(t, err)

		total := 0.0
		for nonce := int64(0); nonce < rolls; nonce++ {
			roll := fair.Roll(testServerSeed, testClientSeed, nonce)
			win, err := fair.DiceWins(bet, roll)
			require.NoError(t, err)
			if win {
				total += mult
			}
		}
		rtp := total / rolls

		assert.InDelta(t, want, rtp, 0.005, "mode %s simulated RTP", bet.Mode)
	}
}

func TestDiceChancePerMode(t *testing.T) {
	for _, tc := range []struct {
		bet    fair.DiceBet
		chance float64
	}{
		{fair.DiceBet{Mode: fair.DiceModeUnder, TargetA: 5000}, 50},
		{fair.DiceBet{Mode: fair.DiceModeOver, TargetA: 5000}, 49.99},
		{fair.DiceBet{Mode: fair.DiceModeBetween, TargetA: 2000, TargetB: 4000}, 19.99},
		{fair.DiceBet{Mode: fair.DiceModeOutside, TargetA: 2000, TargetB: 4000}, 79.99},
		{fair.DiceBet{Mode: fair.DiceModeBetweenSets, TargetA: 1000, TargetB: 3000, TargetC: 6000, TargetD: 8000}, 39.98},
	} {
		chance, err := fair.DiceChance(tc.bet)
		require.NoError(t, err)
		assert.InDelta(t, tc.chance, chance, 1e-9, "mode %s", tc.bet.Mode)
	}
}
