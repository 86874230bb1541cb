// Package services contains server-side business logic. This file implements
// AuthService: credential checks, login, refresh token rotation and logout.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
)

// TokenPair is what /login and /refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Role         string
}

// AuthService owns the refresh token lifecycle. All state lives in the
// database; the service itself is stateless and safe for concurrent use.
type AuthService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	issuer      *auth.TokenIssuer
	policy      config.LoginPolicy
	log         logging.Logger
	metrics     *metrics.Metrics
}

// NewAuthService wires the service. log may be nil; m may be nil.
func NewAuthService(tx dbx.Transactor, rm repomanager.RepositoryManager, issuer *auth.TokenIssuer,
	cfg *config.Config, log logging.Logger, m *metrics.Metrics) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthService{
		tx:          tx,
		repomanager: rm,
		issuer:      issuer,
		policy:      cfg.LoginPolicy,
		log:         log,
		metrics:     m,
	}
}

// VerifyCredentials returns the user owning login if password matches its
// stored hash. Unknown logins and wrong passwords both yield
// common.ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, login, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.tx.Conn())
	user, err := repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and returns a fresh access token together with
// a refresh token. Under the reuse policy an active refresh token of the
// user is returned instead of minting a new one; the user row is locked so
// concurrent logins cannot both insert.
func (s *AuthService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	pair, reused, err := s.login(ctx, login, password)
	switch {
	case err == nil && reused:
		s.metrics.Login(metrics.OutcomeReused)
	case err == nil:
		s.metrics.Login(metrics.OutcomeSuccess)
	case errors.Is(err, common.ErrInvalidCredentials):
		s.metrics.Login(metrics.OutcomeInvalidCredentials)
	default:
		s.metrics.Login(metrics.OutcomeError)
	}
	return pair, err
}

func (s *AuthService) login(ctx context.Context, login, password string) (*TokenPair, bool, error) {
	user, err := s.VerifyCredentials(ctx, login, password)
	if err != nil {
		return nil, false, err
	}

	access, err := s.issueAccess(user)
	if err != nil {
		return nil, false, err
	}

	if s.policy == config.LoginPolicyAlwaysNew {
		refresh, err := s.issueRefresh(ctx, s.repomanager.RefreshTokens(s.tx.Conn()), user.ID)
		if err != nil {
			return nil, false, err
		}
		return newPair(access, refresh, user), false, nil
	}

	var (
		refresh string
		reused  bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).LockUser(ctx, user.ID); err != nil {
			return fmt.Errorf("error locking user: %w", err)
		}
		tokens := s.repomanager.RefreshTokens(tx)
		active, err := tokens.GetActive(ctx, user.ID, s.issuer.Now())
		switch {
		case err == nil:
			refresh, reused = active.Token, true
			return nil
		case errors.Is(err, common.ErrTokenNotFound):
			refresh, err = s.issueRefresh(ctx, tokens, user.ID)
			return err
		default:
			return fmt.Errorf("error searching active refresh token: %w", err)
		}
	})
	if err != nil {
		return nil, false, err
	}

	s.log.Debug(ctx, "login succeeded", "user_id", user.ID, "reused", reused, "refresh", common.Fingerprint(refresh))
	return newPair(access, refresh, user), reused, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token is
// locked, checked, revoked and replaced in one transaction, so two
// concurrent rotations of one token cannot both succeed.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repomanager.RefreshTokens(tx)

		rec, err := tokens.LookupForUpdate(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrTokenNotFound) {
				return common.ErrTokenNotFound
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}

		if rec.ExpiredAt(s.issuer.Now()) {
			if rec.Revoked {
				s.log.Info(ctx, "expired revoked refresh token presented", "user_id", rec.UserID)
			}
			return common.ErrTokenExpired
		}
		if rec.Revoked {
			s.log.Warn(ctx, "refresh token replay detected",
				"user_id", rec.UserID, "token_id", rec.ID, "refresh", common.Fingerprint(refreshToken))
			return common.ErrTokenRevoked
		}

		user, err := s.repomanager.Users(tx).GetUserByID(ctx, rec.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidUser
			}
			return fmt.Errorf("error searching user: %w", err)
		}

		access, err := s.issueAccess(user)
		if err != nil {
			return err
		}

		n, err := tokens.Revoke(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if n != 1 {
			s.log.Error(ctx, "refresh token rotation inconsistency",
				"user_id", rec.UserID, "token_id", rec.ID, "rows_affected", n)
			return fmt.Errorf("%w: revoke affected %d rows", common.ErrInternalInconsistency, n)
		}

		next, err := s.issueRefresh(ctx, tokens, user.ID)
		if err != nil {
			return err
		}
		pair = newPair(access, next, user)
		return nil
	})

	s.metrics.Refresh(refreshOutcome(err))
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes an unrevoked refresh token. Anything other than exactly
// one revoked row is reported as common.ErrTokenNotFound.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	n, err := s.repomanager.RefreshTokens(s.tx.Conn()).RevokeActive(ctx, refreshToken)
	if err != nil {
		s.metrics.Logout(metrics.OutcomeError)
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	if n != 1 {
		s.metrics.Logout(metrics.OutcomeNotFound)
		return common.ErrTokenNotFound
	}
	s.metrics.Logout(metrics.OutcomeRevoked)
	return nil
}

func (s *AuthService) issueAccess(user *models.User) (string, error) {
	token, _, err := s.issuer.IssueAccess(user)
	if err != nil {
		return "", fmt.Errorf("%w: issue access token for user %d: %v", common.ErrorInternal, user.ID, err)
	}
	return token, nil
}

// issueRefresh signs and persists a refresh token. The token only counts as
// issued once the insert succeeds.
func (s *AuthService) issueRefresh(ctx context.Context, tokens refreshtokens.Repository, userID int64) (string, error) {
	token, expiresAt, err := s.issuer.SignRefresh(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if _, err := tokens.Insert(ctx, userID, token, expiresAt); err != nil {
		return "", fmt.Errorf("error saving refresh token: %w", err)
	}
	return token, nil
}

func newPair(access, refresh string, user *models.User) *TokenPair {
	return &TokenPair{AccessToken: access, RefreshToken: refresh, UserID: user.ID, Role: user.Role}
}

func refreshOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrTokenNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, common.ErrTokenRevoked):
		return metrics.OutcomeRevoked
	case errors.Is(err, common.ErrTokenExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, common.ErrInvalidUser):
		return metrics.OutcomeInvalidUser
	case errors.Is(err, common.ErrInternalInconsistency):
		return metrics.OutcomeInconsistency
	default:
		return metrics.OutcomeError
	}
}
