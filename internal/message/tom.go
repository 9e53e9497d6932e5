package message

import "fmt"

// tomAlphabet orders the characters of a type-order mark: digits, then
// upper-case, then lower-case letters.
const tomAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TOMLen is the length of every type-order mark.
const TOMLen = 3

// maxTOMs is the size of the token space.
const maxTOMs = len(tomAlphabet) * len(tomAlphabet) * len(tomAlphabet)

// tomAt returns the i-th token of the enumeration. The first token is "000",
// the second "001", and so on.
func tomAt(i int) (string, error) {
	if i < 0 || i >= maxTOMs {
		return "", fmt.Errorf("type-order mark index %d out of range", i)
	}
	base := len(tomAlphabet)
	b := [TOMLen]byte{}
	for pos := TOMLen - 1; pos >= 0; pos-- {
		b[pos] = tomAlphabet[i%base]
		i /= base
	}
	return string(b[:]), nil
}
