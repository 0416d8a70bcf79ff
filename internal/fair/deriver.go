// Package fair implements the provably fair outcome derivation shared by
// the dice and towers games: commit-reveal seed handling, a keyed hash
// stream, and deterministic mapping of hash material to game outcomes.
//
// Everything in this package is pure. The same (serverSeed, clientSeed,
// nonce) always produces the same outcome, which is what the verification
// endpoint relies on.
package fair

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// GenerateServerSeed returns a fresh 256-bit hex server seed.
func GenerateServerSeed() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

// HashServerSeed returns the SHA-256 commitment published before play.
func HashServerSeed(serverSeed string) string {
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// DeriveHash combines the server seed with client-controlled salt material
// via HMAC-SHA256. The server seed is the key, so derived hashes never leak
// it even across many derivations.
func DeriveHash(serverSeed, salt string) []byte {
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(salt))
	return h.Sum(nil)
}

// DiceSalt is the salt for a single dice roll.
func DiceSalt(clientSeed string, nonce int64) string {
	return fmt.Sprintf("%s:%d", clientSeed, nonce)
}

// RowSalt is the salt for one towers row; the row index acts as a
// per-selection counter so each row draws from an independent stream.
func RowSalt(clientSeed string, nonce int64, row int) string {
	return fmt.Sprintf("%s:%d:row:%d", clientSeed, nonce, row)
}

// Stream yields unbiased uniform integers from an HMAC-keyed byte stream.
// Block i of the stream is HMAC-SHA256(serverSeed, salt+":"+i), so the
// stream is fully determined by (serverSeed, salt) and never runs dry.
type Stream struct {
	serverSeed string
	salt       string
	block      []byte
	blockIndex int
	offset     int
}

// NewStream starts a stream keyed by (serverSeed, salt). Block zero is the
// plain DeriveHash of the salt, so single-draw consumers observe exactly
// the documented HMAC(serverSeed, salt) digest.
func NewStream(serverSeed, salt string) *Stream {
	return &Stream{
		serverSeed: serverSeed,
		salt:       salt,
		block:      DeriveHash(serverSeed, salt),
	}
}

func (s *Stream) nextUint32() uint32 {
	if s.offset+4 > len(s.block) {
		s.blockIndex++
		s.block = DeriveHash(s.serverSeed, fmt.Sprintf("%s:%d", s.salt, s.blockIndex))
		s.offset = 0
	}
	v := binary.BigEndian.Uint32(s.block[s.offset : s.offset+4])
	s.offset += 4
	return v
}

// Uniform returns an integer in [0, n) with no modulo bias: draws above the
// largest multiple of n are rejected and redrawn. Integer arithmetic only,
// so results are identical on every platform.
func (s *Stream) Uniform(n int) int {
	if n <= 0 {
		panic("fair: Uniform bound must be positive")
	}
	bound := uint32(n)
	// 2^32 mod bound, computed in uint32 arithmetic. Rejecting draws below
	// this threshold leaves a multiple of bound accepted values.
	reject := -bound % bound
	for {
		v := s.nextUint32()
		if v >= reject {
			return int(v % bound)
		}
	}
}

// RollUnits is the number of distinct dice outcomes: 00.00 through 99.99.
const RollUnits = 10000

// Roll maps the stream for (serverSeed, clientSeed, nonce) to a dice roll
// expressed in basis points: an integer in [0, 10000) where 4999 means
// 49.99. Basis points keep the roll bit-reproducible; callers divide by
// 100 only for display.
func Roll(serverSeed, clientSeed string, nonce int64) int {
	stream := NewStream(serverSeed, DiceSalt(clientSeed, nonce))
	return stream.Uniform(RollUnits)
}

// RowLosers selects exactly losersPerRow distinct losing columns for one
// towers row, uniformly over all column subsets, via a partial
// Fisher-Yates shuffle driven by the row's stream. Ascending order.
func RowLosers(serverSeed, clientSeed string, nonce int64, row, columns, losersPerRow int) []int {
	stream := NewStream(serverSeed, RowSalt(clientSeed, nonce, row))

	cols := make([]int, columns)
	for i := range cols {
		cols[i] = i
	}
	for i := 0; i < losersPerRow; i++ {
		j := i + stream.Uniform(columns-i)
		cols[i], cols[j] = cols[j], cols[i]
	}

	losers := cols[:losersPerRow]
	for i := 1; i < len(losers); i++ {
		for j := i; j > 0 && losers[j] < losers[j-1]; j-- {
			losers[j], losers[j-1] = losers[j-1], losers[j]
		}
	}
	return losers
}
