package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

func GenerateGameID() string {
	return fmt.Sprintf("game_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateBetID() string {
	return fmt.Sprintf("bet_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateRoundID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateClientSeed() (string, error) {
	bytes := make([]byte, 16) // 128 bits of entropy
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate client seed: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Target bounds in basis points: [0.01, 99.98], minimum range width 0.02.
const (
	minTargetBP = 1
	maxTargetBP = 9998
	minWidthBP  = 2
)

// TargetBP converts a two-decimal percentage target to basis points.
// Values with more than two decimals are rejected rather than silently
// rounded, since the evaluator's chance math assumes exact basis points.
func TargetBP(target float64) (int, error) {
	scaled := target * 100
	bp := int(math.Round(scaled))
	if math.Abs(scaled-float64(bp)) > 1e-6 {
		return 0, ErrInvalidTargets
	}
	if bp < minTargetBP || bp > maxTargetBP {
		return 0, ErrInvalidTargets
	}
	return bp, nil
}

// DiceTargetsBP validates the request's targets for the given mode and
// returns them in basis points. Range modes require width >= 0.02; the
// two-range mode requires the second range to start at or after the first
// range's end.
func (r *DiceRollRequest) DiceTargetsBP() (a, b, c, d int, err error) {
	a, err = TargetBP(r.TargetA)
	if err != nil {
		return
	}
	switch r.Mode {
	case "under", "over":
		return
	case "between", "outside":
		b, err = TargetBP(r.TargetB)
		if err == nil && b-a < minWidthBP {
			err = ErrInvalidTargets
		}
		return
	case "between-sets":
		if b, err = TargetBP(r.TargetB); err != nil {
			return
		}
		if c, err = TargetBP(r.TargetC); err != nil {
			return
		}
		if d, err = TargetBP(r.TargetD); err != nil {
			return
		}
		if b-a < minWidthBP || d-c < minWidthBP || c < b {
			err = ErrInvalidTargets
		}
		return
	default:
		err = ErrInvalidMode
		return
	}
}

// Bet amount bounds in cents: 1 cent through $100.
const (
	minBetAmount = 1
	maxBetAmount = 10000
)

func validateAmount(amount float64) error {
	if amount < minBetAmount || amount > maxBetAmount {
		return ErrInvalidAmount
	}
	return nil
}

func (r *DiceRollRequest) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	_, _, _, _, err := r.DiceTargetsBP()
	return err
}

func (r *TowersStartRequest) Validate() error {
	return validateAmount(r.Amount)
}

func CalculatePayout(betAmount, multiplier float64) float64 {
	return math.Round(betAmount*multiplier*100) / 100
}

func FormatCurrency(cents float64) string {
	return fmt.Sprintf("$%.2f", cents/100)
}

func NewWallet(userID int64) (*Wallet, error) {
	clientSeed, err := GenerateClientSeed()
	if err != nil {
		return nil, err
	}

	return &Wallet{
		UserID:     userID,
		Balance:    10000, // $100.00 starting balance, in cents
		ClientSeed: clientSeed,
	}, nil
}
