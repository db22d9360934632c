package room

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// codeAlphabet is the 32-symbol invite alphabet: uppercase letters and digits
// with the ambiguous 0, O, 1 and I removed.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed invite code length.
const CodeLength = 6

var ErrBadInviteCode = errors.New("invite code must be 6 characters from the room alphabet")

// GenerateCode produces a fresh invite code.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := 0; i < CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}

// NormalizeCode uppercases user input and validates it against the alphabet.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", ErrBadInviteCode
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return "", ErrBadInviteCode
		}
	}
	return code, nil
}
