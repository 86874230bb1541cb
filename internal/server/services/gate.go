package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
)

// AccessGate admits requests that carry a valid access token whose roles
// intersect the roles an endpoint allows.
type AccessGate struct {
	issuer  *auth.TokenIssuer
	metrics *metrics.Metrics
}

func NewAccessGate(issuer *auth.TokenIssuer, m *metrics.Metrics) *AccessGate {
	return &AccessGate{issuer: issuer, metrics: m}
}

// Authorize checks an Authorization header value of the form "Bearer <token>".
func (g *AccessGate) Authorize(header string, allowed auth.Roles) (*auth.AccessClaims, error) {
	token, err := BearerToken(header)
	if err != nil {
		g.metrics.AccessCheck(metrics.OutcomeMalformed)
		return nil, err
	}

	claims, err := g.issuer.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			g.metrics.AccessCheck(metrics.OutcomeExpired)
		} else {
			g.metrics.AccessCheck(metrics.OutcomeInvalidSignature)
		}
		return nil, err
	}

	if !claims.Roles.Intersects(allowed) {
		g.metrics.AccessCheck(metrics.OutcomeForbidden)
		return nil, common.ErrForbidden
	}

	g.metrics.AccessCheck(metrics.OutcomeSuccess)
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", common.ErrMalformedHeader
	}
	return token, nil
}
