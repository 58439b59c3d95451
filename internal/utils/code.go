package utils

import "strings"

// ConfirmationCode returns a short random reference code suitable for
// registration confirmations, e.g. "7F3A91C40B2D".
func ConfirmationCode() (string, error) {
	raw, err := randomHex(6)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(raw), nil
}
