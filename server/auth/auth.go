// Package auth issues and validates the bearer tokens that protect the
// profile endpoints. A client exchanges its pairing name and code for a
// signed JWT whose subject is the pairing name; the uid it may read is
// derived from that subject, never from the request.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Issuer is the issuer of the token.
	Issuer = "mindvibe"
	// KeyID is the version of the signing key.
	KeyID = "v1"
	// AccessTokenAudienceName is the audience name of the access token.
	AccessTokenAudienceName = "user.access-token"
	// AccessTokenDuration is the lifetime of the access token.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// ClaimsMessage is the serialized token payload.
type ClaimsMessage struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates an access token for the paired client.
func GenerateAccessToken(pairingName string, expirationTime time.Time, secret []byte) (string, error) {
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{AccessTokenAudienceName},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Subject:  pairingName,
	}
	if !expirationTime.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Name:             pairingName,
		RegisteredClaims: registeredClaims,
	})
	token.Header["kid"] = KeyID

	return token.SignedString(secret)
}

// ParseAccessToken validates the token signature and audience and
// returns the pairing name it was issued to.
func ParseAccessToken(tokenString string, secret []byte) (string, error) {
	claims := &ClaimsMessage{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.Errorf("unexpected key id: %v", t.Header["kid"])
		}
		return secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "invalid access token")
	}
	if !token.Valid {
		return "", errors.New("invalid access token")
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == AccessTokenAudienceName {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return "", errors.Errorf("unexpected audience: %v", claims.Audience)
	}
	return claims.Name, nil
}

// HashPairingCode hashes a pairing code for storage. The plaintext is
// shown once at creation and never persisted.
func HashPairingCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash pairing code")
	}
	return string(hash), nil
}

// VerifyPairingCode reports whether code matches the stored hash.
func VerifyPairingCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
