package common

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressHRP is the bech32 human-readable prefix of Dytallix account addresses.
const AddressHRP = "dyt"

// IsAddress reports whether s is a well-formed bech32 account address.
// The checksum is verified, so look-alike strings never reach the store.
func IsAddress(s string) bool {
	hrp, _, err := bech32.Decode(s)
	if err != nil {
		return false
	}
	return strings.ToLower(hrp) == AddressHRP
}
