// Package id generates identifiers for catalog records and orders.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// suffixAlphabet keeps order suffixes readable when read aloud to support.
const suffixAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "bk-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Suffix returns n random characters from an unambiguous uppercase alphabet.
func Suffix(n int) (string, error) {
	s, err := gonanoid.Generate(suffixAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate suffix: %w", err)
	}
	return s, nil
}

// Order builds an order id from the placement time and a random suffix.
// Format: ord-<unix millis>-<6 chars> (e.g., "ord-1760518800000-K3P9QX").
func Order(at time.Time) (string, error) {
	suffix, err := Suffix(6)
	if err != nil {
		return "", err
	}
	return "ord-" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + suffix, nil
}
