package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString returns a hex string built from size random bytes,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRandDigitString returns a string of exactly n decimal digits drawn
// from crypto/rand. Leading zeros are allowed, so the keyspace is 10^n.
func MakeRandDigitString(n int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

// MakeRandFloat returns a uniformly distributed value in [0, 1) suitable
// for the stored random tiebreaker on goodnight messages.
func MakeRandFloat() (float64, error) {
	const precision = 1 << 53
	v, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return 0, err
	}
	return float64(v.Int64()) / float64(precision), nil
}
