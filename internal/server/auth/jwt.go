package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the payload of an access token.
// The login is carried in the standard "sub" claim.
type AccessClaims struct {
	UserID int64 `json:"user_id"`
	Roles  Roles `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Its validity is decided by
// the store, not by the claims.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens use
// independent secrets, so neither verifies as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer builds an issuer from the server config. A nil now uses
// time.Now.
func NewTokenIssuer(cfg *config.Config, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		now:           now,
	}
}

// Now returns the issuer clock reading.
func (i *TokenIssuer) Now() time.Time {
	return i.now()
}

// IssueAccess mints an access token for user. The user's stored role label
// must be a known role.
func (i *TokenIssuer) IssueAccess(user *models.User) (string, *AccessClaims, error) {
	role, err := ParseRole(user.Role)
	if err != nil {
		return "", nil, err
	}

	now := i.now()
	claims := &AccessClaims{
		UserID: user.ID,
		Roles:  NewRoles(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Login,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signed, claims, nil
}

// SignRefresh mints a refresh token string for userID and reports its expiry
// as encoded in the token. Every call yields a distinct string.
func (i *TokenIssuer) SignRefresh(userID int64) (string, time.Time, error) {
	now := i.now()
	exp := jwt.NewNumericDate(now.Add(i.refreshTTL))
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, exp.Time, nil
}

// VerifyAccess checks the signature and expiry of an access token.
// It returns common.ErrTokenExpired for an expired but authentic token and
// common.ErrSignatureInvalid for anything else that fails.
func (i *TokenIssuer) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.accessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrSignatureInvalid, err)
	}

	if claims.UserID == 0 || claims.Subject == "" || claims.Roles.Empty() {
		return nil, fmt.Errorf("%w: incomplete claims", common.ErrSignatureInvalid)
	}
	return claims, nil
}
