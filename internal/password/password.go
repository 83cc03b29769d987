// Package password generates initial credentials for provisioned accounts.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	upper    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower    = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
	punct    = "!@#$%"
	alphabet = upper + lower + digits + punct

	// DefaultLength is the standard length for generated credentials.
	DefaultLength = 12
)

// Generate returns a random credential of the given length drawn from letters,
// digits, and a small punctuation set. Results of length >= 2 always contain at
// least one uppercase letter and at least one digit. The randomness source is
// crypto/rand throughout.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid password length %d", length)
	}

	chars := make([]byte, length)
	for i := range chars {
		c, err := pick(alphabet)
		if err != nil {
			return "", err
		}
		chars[i] = c
	}

	// Reserve two distinct positions for a guaranteed uppercase letter and a
	// guaranteed digit so the complexity policy holds for any draw.
	if length >= 2 {
		i, err := index(length)
		if err != nil {
			return "", err
		}
		j, err := index(length - 1)
		if err != nil {
			return "", err
		}
		if j >= i {
			j++
		}

		chars[i], err = pick(upper)
		if err != nil {
			return "", err
		}
		chars[j], err = pick(digits)
		if err != nil {
			return "", err
		}
	}

	return string(chars), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return set[n.Int64()], nil
}

func index(limit int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(n.Int64()), nil
}
