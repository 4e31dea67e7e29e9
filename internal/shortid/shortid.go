// Package shortid generates the random, fixed-length identifiers used as short ids.
package shortid

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the URL-safe symbol set ids are drawn from: 64 symbols,
// so an id of length L has 64^L possible values
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	// DefaultLength is the id length used when none is configured
	DefaultLength = 6
	// MaxLength bounds configured lengths and the ids accepted by Valid
	MaxLength = 32
)

// Generator returns a new candidate id of the given length
type Generator func(length int) (string, error)

// New draws length symbols uniformly at random from Alphabet
// Randomness comes from crypto/rand inside go-nanoid
func New(length int) (string, error) {
	if length <= 0 || length > MaxLength {
		return "", fmt.Errorf("id length must be in [1, %d], got %d", MaxLength, length)
	}
	return gonanoid.Generate(Alphabet, length)
}

// Valid reports whether id could have been produced by New for some length
// Lengths are not pinned so ids issued before a length change stay resolvable
func Valid(id string) bool {
	if id == "" || len(id) > MaxLength {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}
