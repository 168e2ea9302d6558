package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrMissingUser  = errors.New("token has no subject")
)

// Claims carries the authenticated user. UserID mirrors the registered
// "sub" claim.
type Claims struct {
	UserID string `json:"-"`
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 bearer tokens issued to end users.
type JWT struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWT creates a token verifier. When issuer is non-empty, tokens are
// stamped with it and validation requires it.
func NewJWT(secret, issuer string) *JWT {
	return &JWT{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Generate mints a token for userID that expires after ttl.
func (j *JWT) Generate(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingUser
	}

	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate parses a token, checking signature, algorithm, expiry and issuer.
func (j *JWT) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingUser
	}
	claims.UserID = claims.Subject

	return claims, nil
}
