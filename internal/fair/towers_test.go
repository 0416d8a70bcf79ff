package fair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashdash-casino-backend/internal/fair"
)

func TestTowersMultiplierScenario(t *testing.T) {
	// columns=3, losersPerRow=1, edge=5%:
	// multiplier(1) = (0.95 * 3/2)^1 = 1.425, multiplier(2) = 1.425^2.
	assert.InDelta(t, 1.425, fair.TowersMultiplier(1, 3, 1, 5), 1e-9)
	assert.InDelta(t, 2.0306, fair.TowersMultiplier(2, 3, 1, 5), 1e-4)
}

func TestTowersMultiplierMonotonic(t *testing.T) {
	for _, d := range fair.Difficulties {
		prev := fair.TowersMultiplier(0, d.Columns, d.LosersPerRow, 5)
		assert.InDelta(t, 1.0, prev, 1e-9, "%s: zero rows cleared pays even", d.Name)

		first := fair.TowersMultiplier(1, d.Columns, d.LosersPerRow, 5)
		assert.Greater(t, first, 1.0, "%s: first row offer must exceed 1", d.Name)

		for rows := 1; rows <= fair.TowersRows; rows++ {
			mult := fair.TowersMultiplier(rows, d.Columns, d.LosersPerRow, 5)
			assert.Greater(t, mult, prev, "%s: multiplier must strictly increase at row %d", d.Name, rows)
			prev = mult
		}
	}
}

func TestDifficultyPresets(t *testing.T) {
	for name := range fair.Difficulties {
		d, err := fair.DifficultyByName(name)
		require.NoError(t, err)
		assert.Greater(t, d.Columns, d.LosersPerRow,
			"%s: losers per row must stay below columns or the payout curve is undefined", name)
		assert.Greater(t, d.LosersPerRow, 0)
	}

	_, err := fair.DifficultyByName("nightmare")
	assert.Error(t, err)
}

func TestBuildDeck(t *testing.T) {
	d, err := fair.DifficultyByName("expert")
	require.NoError(t, err)

	deck := fair.BuildDeck(testServerSeed, testClientSeed, 7, d)
	require.Len(t, deck, fair.TowersRows)

	for row, cells := range deck {
		require.Len(t, cells, d.Columns)

		losers := 0
		for _, marker := range cells {
			switch marker {
			case fair.CellLose:
				losers++
			case fair.CellSafe:
			default:
				t.Fatalf("unexpected marker %q in row %d", marker, row)
			}
		}
		assert.Equal(t, d.LosersPerRow, losers, "row %d loser count", row)
	}

	again := fair.BuildDeck(testServerSeed, testClientSeed, 7, d)
	assert.Equal(t, deck, again, "deck must be reproducible from the same seeds")

	other := fair.BuildDeck(testServerSeed, testClientSeed, 8, d)
	assert.NotEqual(t, deck, other, "a new nonce should reshuffle the board")
}
