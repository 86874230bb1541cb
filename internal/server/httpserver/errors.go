package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// tokenScope tells toHTTP which token an expiry refers to.
type tokenScope int

const (
	scopeAccess tokenScope = iota
	scopeRefresh
)

// detailResponse is the body of every error and of /logout.
type detailResponse struct {
	Detail string `json:"detail"`
}

// toHTTP is the only place where error kinds become status codes.
func toHTTP(err error, scope tokenScope) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid login or password"
	case errors.Is(err, common.ErrTokenNotFound), errors.Is(err, common.ErrInvalidUser):
		return http.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized, "Refresh token revoked"
	case errors.Is(err, common.ErrTokenExpired):
		if scope == scopeRefresh {
			return http.StatusUnauthorized, "Refresh token expired"
		}
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, common.ErrSignatureInvalid):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrMalformedHeader):
		return http.StatusUnauthorized, "Invalid authorization header"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "User exist in database"
	case errors.Is(err, common.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, common.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError maps err and writes {"detail": ...}. Server-side failures are
// logged at Error, client failures at Info.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error, scope tokenScope) {
	status, detail := toHTTP(err, scope)
	ctx := r.Context()
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", r.URL.Path, "status", status, "error", err.Error(),
			"inconsistency", errors.Is(err, common.ErrInternalInconsistency))
	} else {
		s.logger.Info(ctx, "request rejected", "path", r.URL.Path, "status", status, "reason", detail)
	}
	writeJSON(w, status, detailResponse{Detail: detail})
}
