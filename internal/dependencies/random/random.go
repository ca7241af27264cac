// Package random generates the connection identifiers handed to login frames.
package random

import (
	"crypto/rand"
	"math/big"
)

// TokenAlphabet is the URL-safe alphabet used for connection ids, so they can
// be placed in a frame query string without escaping.
const TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Random generates random strings and can be replaced in tests
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// Token returns a URL-safe random string of the given length from r.
func Token(r Random, length int) string {
	return r.String(length, TokenAlphabet)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) intn(n int) int {
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.intn(len(alphabet))]
	}
	return string(result)
}
