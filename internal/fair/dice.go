package fair

import (
	"math"

	"cashdash-casino-backend/internal/models"
)

// DiceMode is one of the five dice bet variants.
type DiceMode string

const (
	DiceModeUnder       DiceMode = "under"
	DiceModeOver        DiceMode = "over"
	DiceModeBetween     DiceMode = "between"
	DiceModeOutside     DiceMode = "outside"
	DiceModeBetweenSets DiceMode = "between-sets"
)

// DiceBet holds an already-validated dice bet. Targets are in basis points
// (49.99 -> 4999); range validation (bounds, minimum width, ordering)
// happens at the request layer before a DiceBet is built.
type DiceBet struct {
	Mode DiceMode
	// TargetA..TargetD: under/over use A only; between/outside use A,B;
	// between-sets uses all four with C >= B.
	TargetA int
	TargetB int
	TargetC int
	TargetD int
	Edge    float64 // house edge percent
}

type diceEvaluator struct {
	// chance returns the count of winning rolls, in basis points.
	chance func(b DiceBet) int
	// wins reports whether the roll (basis points) wins, with the strict
	// inequalities of each mode.
	wins func(b DiceBet, roll int) bool
}

// diceEvaluators is the closed mode table; every mode has exactly one
// entry, so an unknown mode is detectable instead of falling through a
// default branch.
var diceEvaluators = map[DiceMode]diceEvaluator{
	DiceModeUnder: {
		chance: func(b DiceBet) int { return b.TargetA },
		wins:   func(b DiceBet, roll int) bool { return roll < b.TargetA },
	},
	DiceModeOver: {
		chance: func(b DiceBet) int { return 9999 - b.TargetA },
		wins:   func(b DiceBet, roll int) bool { return roll > b.TargetA },
	},
	DiceModeBetween: {
		chance: func(b DiceBet) int { return b.TargetB - b.TargetA - 1 },
		wins:   func(b DiceBet, roll int) bool { return roll > b.TargetA && roll < b.TargetB },
	},
	DiceModeOutside: {
		chance: func(b DiceBet) int { return 9999 - (b.TargetB - b.TargetA) },
		wins:   func(b DiceBet, roll int) bool { return roll < b.TargetA || roll > b.TargetB },
	},
	DiceModeBetweenSets: {
		chance: func(b DiceBet) int {
			return (b.TargetB - b.TargetA - 1) + (b.TargetD - b.TargetC - 1)
		},
		wins: func(b DiceBet, roll int) bool {
			return (roll > b.TargetA && roll < b.TargetB) || (roll > b.TargetC && roll < b.TargetD)
		},
	},
}

// DiceChance returns the winning chance of the bet as a percentage.
func DiceChance(b DiceBet) (float64, error) {
	ev, ok := diceEvaluators[b.Mode]
	if !ok {
		return 0, models.ErrInvalidMode
	}
	return float64(ev.chance(b)) / 100, nil
}

// DiceMultiplier returns the payout multiplier for the bet, rounded to four
// decimals: (100 - edge) / chance.
func DiceMultiplier(b DiceBet) (float64, error) {
	chance, err := DiceChance(b)
	if err != nil {
		return 0, err
	}
	return Round4((100 - b.Edge) / chance), nil
}

// DiceWins reports whether the roll (basis points) wins the bet.
func DiceWins(b DiceBet, roll int) (bool, error) {
	ev, ok := diceEvaluators[b.Mode]
	if !ok {
		return false, models.ErrInvalidMode
	}
	return ev.wins(b, roll), nil
}

// Round4 rounds to four decimal places, matching the multiplier precision
// recorded at play time and recomputed at verification.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
