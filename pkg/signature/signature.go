// Package signature signs and verifies short-lived download links.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Sign returns the sha256 HMAC hex signature of payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}

// SignKey signs an object key together with its unix expiry
func SignKey(secret, key string, expires time.Time) string {
	return Sign(secret, keyPayload(key, expires.Unix()))
}

// VerifyKey checks a key signature and that it has not expired at now
func VerifyKey(secret, key string, expiresUnix int64, signatureHex string, now time.Time) bool {
	if now.Unix() > expiresUnix {
		return false
	}
	return VerifyHMAC(secret, keyPayload(key, expiresUnix), signatureHex)
}

func keyPayload(key string, expiresUnix int64) []byte {
	return []byte(key + "\n" + strconv.FormatInt(expiresUnix, 10))
}
