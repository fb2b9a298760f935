// Package auth verifies bearer credentials and issues signed tokens.
package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"folio/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "folio-api"
	audience = "folio-client"
	tokenTTL = 7 * 24 * time.Hour
)

// Identity is the caller identity extracted from a verified credential.
// The embedded user ID is trusted for the request's duration; it is not
// re-checked against storage.
type Identity struct {
	UserID   uint
	Username string
}

// Verifier validates bearer credentials against a server-held HMAC secret.
// It performs no I/O.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a Verifier signing and verifying with the given secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the raw value of an Authorization header and returns the
// caller identity. It fails with an UNAUTHORIZED AppError when the header is
// absent, malformed, the signature does not verify, or the token is expired.
func (v *Verifier) Verify(authHeader string) (*Identity, error) {
	if authHeader == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, models.NewUnauthorizedError("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if iss, issOk := claims["iss"].(string); !issOk || iss != issuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if aud, audOk := claims["aud"].(string); !audOk || aud != audience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	identity := &Identity{UserID: uint(userID)}
	if username, usernameOk := claims["username"].(string); usernameOk {
		identity.Username = username
	}
	return identity, nil
}

// VerifyOptional never fails: an absent or invalid credential yields no
// identity, which callers must treat as anonymous.
func (v *Verifier) VerifyOptional(authHeader string) (*Identity, bool) {
	identity, err := v.Verify(authHeader)
	if err != nil {
		return nil, false
	}
	return identity, true
}

// Sign issues a signed token for the given user.
func (v *Verifier) Sign(userID uint, username string) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      issuer,
		"aud":      audience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// ExtractJTI pulls the jti claim out of a bearer header without verifying
// the signature. Only used to consult the revocation blacklist after the
// token has already been verified.
func ExtractJTI(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	token, _, err := jwt.NewParser().ParseUnverified(parts[1], jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	jti, _ := claims["jti"].(string)
	return jti
}
