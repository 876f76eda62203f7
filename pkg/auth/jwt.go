package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgMissingSubject          = "token has no subject"
)

// Claims carried by identity provider ID tokens. The provider user id is the
// registered subject claim.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UID returns the provider user id.
func (c *Claims) UID() string {
	return c.Subject
}

// TokenService verifies (and, for the dev emulator and tests, mints) identity
// provider ID tokens.
type TokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewTokenService(secret, issuer string, expiry time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

// Generate mints a short-lived ID token for the given provider uid.
func (s *TokenService) Generate(uid, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a bearer token, returning its claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf(msgTokenParseFailed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf(msgInvalidTokenClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf(msgMissingSubject)
	}

	return claims, nil
}
