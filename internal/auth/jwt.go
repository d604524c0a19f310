package auth

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

const tokenTypeAccess = "access"

// TokenPair is what /login and /token/refresh return.  Access is a signed
// JWT; Refresh is an opaque random string whose SHA-256 hash is persisted.
type TokenPair struct {
	Access        string    `json:"access"`
	Refresh       string    `json:"refresh"`
	AccessExpiry  time.Time `json:"-"`
	RefreshExpiry time.Time `json:"-"`
}

// TokenIssuer mints a token pair for a user.
type TokenIssuer interface {
	Issue(u *model.User) (TokenPair, error)
}

// TokenVerifier turns a raw access token into the caller it was issued to.
type TokenVerifier interface {
	Verify(raw string) (*Caller, error)
}

// Claims carried by an access token.  The subject is the decimal user ID.
type Claims struct {
	Username  string `json:"username"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 access tokens and generates refresh
// tokens.  It implements TokenIssuer and TokenVerifier.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(secret string, accessTTLMin, refreshTTLDays int) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *JWTManager) Issue(u *model.User) (TokenPair, error) {
	now := m.now()
	accessExp := now.Add(m.accessTTL)
	claims := Claims{
		Username:  u.Username,
		IsStaff:   u.IsStaff,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	// 48 bytes -> 96 hex chars
	raw, err := randomHex(48)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return TokenPair{
		Access:        signed,
		Refresh:       raw,
		AccessExpiry:  accessExp,
		RefreshExpiry: now.Add(m.refreshTTL),
	}, nil
}

// Verify checks signature, algorithm, expiry and token type.  Every failure
// is reported as ErrInvalidToken.
func (m *JWTManager) Verify(raw string) (*Caller, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	return &Caller{ID: id, Username: claims.Username, IsStaff: claims.IsStaff}, nil
}

// HashRefresh returns the SHA-256 hex digest stored in place of a raw
// refresh token.
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
