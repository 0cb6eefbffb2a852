package domain

import "strings"

// NormalizeName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for user and fleet name normalization.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
