package util

import (
	"golang.org/x/text/unicode/norm"
)

// NormalizeUsername canonicalizes a username to NFC so that visually
// identical inputs entered at provisioning and sign-in compare equal.
// Usernames stay case-sensitive.
func NormalizeUsername(s string) string {
	return norm.NFC.String(s)
}
