package common

import (
	"regexp"
	"strings"
)

// Block and transaction hashes are sha3-256 digests rendered as 64 hex chars.
const HashHexLen = 64

var hexHashRules = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NormalizeHash strips an optional 0x prefix and lowercases the rest.
func NormalizeHash(s string) string {
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "0x")
}

func IsHash(s string) bool {
	return hexHashRules.MatchString(NormalizeHash(s))
}
