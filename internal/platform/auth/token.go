package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewOpaqueToken returns 32 random bytes, hex-encoded. Used for refresh and
// email-verification tokens; only the SHA-256 digest of a refresh token is
// ever stored.
func NewOpaqueToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// HashToken digests a token for at-rest storage and lookup.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewRecoveryCodes generates n single-use recovery codes formatted
// XXXX-XXXX. The caller stores only their digests.
func NewRecoveryCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		hexed := strings.ToUpper(hex.EncodeToString(buf[:]))
		codes = append(codes, fmt.Sprintf("%s-%s", hexed[:4], hexed[4:]))
	}
	return codes, nil
}
