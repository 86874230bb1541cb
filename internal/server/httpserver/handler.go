package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshtoken"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Login    string `json:"login"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type createUserResponse struct {
	UserID int64 `json:"user_id"`
}

type meResponse struct {
	Subject string   `json:"sub"`
	UserID  int64    `json:"user_id"`
	Roles   []string `json:"roles"`
	Expires int64    `json:"exp"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}
	return nil
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    common.TokenTypeBearer,
		UserID:       p.UserID,
		Role:         p.Role,
	}
}

func (s *HTTPServer) healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, scopeAccess)
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err, scopeAccess)
		return
	}

	s.logger.Info(r.Context(), "Logged in", "user_id", pair.UserID)
	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, scopeRefresh)
		return
	}

	pair, err := s.auth.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err, scopeRefresh)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, scopeRefresh)
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, err, scopeRefresh)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{Detail: "Logged out successfully"})
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, scopeAccess)
		return
	}

	u, err := s.users.Create(r.Context(), services.NewUser{
		Name:     req.Name,
		Surname:  req.Surname,
		Login:    req.Login,
		Mail:     req.Mail,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err, scopeAccess)
		return
	}

	s.logger.Info(r.Context(), "User created", "user_id", u.ID)
	writeJSON(w, http.StatusOK, createUserResponse{UserID: u.ID})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorInternal, scopeAccess)
		return
	}

	resp := meResponse{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Roles:   claims.Roles.Names(),
	}
	if claims.ExpiresAt != nil {
		resp.Expires = claims.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}
