// Package sign implements the sort-join-HMAC recipe shared by the payment
// gateways: canonicalize a parameter map by sorting keys lexicographically,
// join key=value pairs with '&', and MAC the result with a shared secret.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Canonical renders params as the sorted key=value&... string. Keys with
// empty values are skipped, matching what both gateways sign.
func Canonical(params map[string]string) string {
	return canonical(params, false)
}

// CanonicalEncoded is Canonical with URL-encoded values, the variant
// Gateway A signs.
func CanonicalEncoded(params map[string]string) string {
	return canonical(params, true)
}

func canonical(params map[string]string, encode bool) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		if encode {
			b.WriteString(url.QueryEscape(params[key]))
		} else {
			b.WriteString(params[key])
		}
	}
	return b.String()
}

// HMACSHA512 returns the lowercase hex HMAC-SHA512 of data.
func HMACSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACSHA256 returns the lowercase hex HMAC-SHA256 of data.
func HMACSHA256(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares two hex signatures in constant time, case-insensitively.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(strings.ToLower(a)), []byte(strings.ToLower(b)))
}
