package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const secretLen = 32

// newTokenSecret generates the unguessable part of a bearer token.
func newTokenSecret() (string, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// digestSecret hashes a token secret for storage; the plaintext never hits the DB.
func digestSecret(secret, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func digestsEqual(d1, d2 string) bool {
	return subtle.ConstantTimeCompare([]byte(d1), []byte(d2)) == 1
}

// formatToken renders the plaintext handed to the client: "<token-id>|<secret>".
// The id prefix makes resolution a primary-key lookup.
func formatToken(id int64, secret string) string {
	return fmt.Sprintf("%d|%s", id, secret)
}

// splitToken parses a plaintext bearer token back into (id, secret).
func splitToken(raw string) (int64, string, error) {
	idStr, secret, found := strings.Cut(raw, "|")
	if !found || secret == "" {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", ErrInvalidToken
	}
	return id, secret, nil
}
