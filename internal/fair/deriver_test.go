package fair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashdash-casino-backend/internal/fair"
)

const (
	testServerSeed = "8a1f0f2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7"
	testClientSeed = "player-seed-001"
)

func TestRollDeterminism(t *testing.T) {
	for nonce := int64(0); nonce < 50; nonce++ {
		first := fair.Roll(testServerSeed, testClientSeed, nonce)
		second := fair.Roll(testServerSeed, testClientSeed, nonce)
		require.Equal(t, first, second, "same inputs must give the same roll")
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, fair.RollUnits)
	}
}

func TestRollChangesWithInputs(t *testing.T) {
	base := fair.Roll(testServerSeed, testClientSeed, 1)

	differs := false
	for nonce := int64(2); nonce < 12; nonce++ {
		if fair.Roll(testServerSeed, testClientSeed, nonce) != base {
			differs = true
			break
		}
	}
	assert.True(t, differs, "rolls should vary across nonces")

	otherClient := fair.Roll(testServerSeed, "other-client-seed", 1)
	otherServer := fair.Roll("0000000000000000000000000000000000000000000000000000000000000000", testClientSeed, 1)
	assert.True(t, base != otherClient || base != otherServer,
		"rolls should depend on both seeds")
}

func TestServerSeedCommitment(t *testing.T) {
	seed, err := fair.GenerateServerSeed()
	require.NoError(t, err)
	require.Len(t, seed, 64)

	hash := fair.HashServerSeed(seed)
	require.Len(t, hash, 64)
	assert.Equal(t, hash, fair.HashServerSeed(seed), "commitment must be deterministic")
	assert.NotEqual(t, seed, hash)
}

func TestUniformBounds(t *testing.T) {
	stream := fair.NewStream(testServerSeed, "uniform-bounds")
	counts := make([]int, 7)
	for i := 0; i < 70000; i++ {
		v := stream.Uniform(7)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 7)
		counts[v]++
	}

	// Loose uniformity check: each bucket within 10% of the expectation.
	expected := 70000 / 7
	for v, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)*0.10, "bucket %d skewed", v)
	}
}

func TestRowLosers(t *testing.T) {
	for row := 0; row < fair.TowersRows; row++ {
		losers := fair.RowLosers(testServerSeed, testClientSeed, 3, row, 4, 3)
		require.Len(t, losers, 3)

		seen := map[int]bool{}
		for _, col := range losers {
			require.GreaterOrEqual(t, col, 0)
			require.Less(t, col, 4)
			require.False(t, seen[col], "losing columns must be distinct")
			seen[col] = true
		}

		again := fair.RowLosers(testServerSeed, testClientSeed, 3, row, 4, 3)
		require.Equal(t, losers, again, "row losers must be reproducible")
	}
}

func TestRowLosersUniform(t *testing.T) {
	// One loser over three columns across many nonces: each column should
	// take roughly a third of the hits.
	const trials = 30000
	counts := make([]int, 3)
	for nonce := int64(0); nonce < trials; nonce++ {
		losers := fair.RowLosers(testServerSeed, testClientSeed, nonce, 0, 3, 1)
		counts[losers[0]]++
	}

	expected := trials / 3
	for col, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)*0.05, "column %d biased", col)
	}
}
