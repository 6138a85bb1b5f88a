package utils

import (
	"encoding/base64"
	"strings"
)

// DecodeServerKey converts a URL-safe base64 application server key into raw
// bytes. Subscription creation rejects keys that are not decoded exactly per
// the base64url alphabet substitution and padding rules, so this must stay
// bit-exact: pad to a multiple of four, then swap '-'→'+' and '_'→'/'.
func DecodeServerKey(key string) ([]byte, error) {
	if pad := len(key) % 4; pad != 0 {
		key += strings.Repeat("=", 4-pad)
	}
	key = strings.ReplaceAll(key, "-", "+")
	key = strings.ReplaceAll(key, "_", "/")
	return base64.StdEncoding.DecodeString(key)
}
