package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The resulting string is twice as long as size, since every byte expands to
// two hex characters.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// passwords read from the terminal as soon as they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NormalizePhone strips everything but digits from a phone number so that
// "+1 (555) 010-2030" and "15550102030" address the same account.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
