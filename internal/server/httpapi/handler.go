package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

type registerRequest struct {
	Username   string `json:"username"`
	PublicKeyY string `json:"publicKeyY"`
	Salt       string `json:"salt"`
}

type challengeRequest struct {
	Username string `json:"username"`
	ClientR  string `json:"clientR"`
}

type challengeResponse struct {
	ChallengeID string `json:"challengeId"`
	Challenge   string `json:"challenge"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type verifyRequest struct {
	Username    string `json:"username"`
	ChallengeID string `json:"challengeId"`
	S           string `json:"s"`
	ClientR     string `json:"clientR,omitempty"`
}

type verifyResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expiresIn"`
}

type errorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "register", common.ErrInvalidInput)
		return
	}

	salt, err := hex.DecodeString(req.Salt)
	if err != nil || len(salt) == 0 {
		s.respondError(w, r, "register", common.ErrInvalidInput)
		return
	}

	if err := s.auth.Register(r.Context(), req.Username, req.PublicKeyY, salt); err != nil {
		s.respondError(w, r, "register", err)
		return
	}

	s.metrics.Record("register", "ok")
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "challenge", common.ErrInvalidInput)
		return
	}

	grant, err := s.auth.RequestChallenge(r.Context(), req.Username, req.ClientR)
	if err != nil {
		s.respondError(w, r, "challenge", err)
		return
	}

	s.metrics.Record("challenge", "ok")
	s.respondJSON(w, r, http.StatusOK, challengeResponse{
		ChallengeID: grant.ChallengeID,
		Challenge:   grant.Challenge,
		ExpiresIn:   grant.ExpiresIn,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "verify", common.ErrInvalidInput)
		return
	}

	grant, err := s.auth.VerifyProof(r.Context(), req.Username, req.ChallengeID, req.S, req.ClientR)
	if err != nil {
		s.respondError(w, r, "verify", err)
		return
	}

	s.metrics.Record("verify", "ok")
	s.respondJSON(w, r, http.StatusOK, verifyResponse{
		Token:     grant.Token,
		TokenType: grant.TokenType,
		Username:  grant.Username,
		ExpiresIn: grant.ExpiresIn,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			s.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// statusAndCode maps service errors to the HTTP status and stable error code
// the protocol exposes.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusConflict, "duplicate_user"
	case errors.Is(err, common.ErrUnknownChallenge):
		return http.StatusGone, "unknown_challenge"
	case errors.Is(err, common.ErrExpiredChallenge):
		return http.StatusGone, "expired_challenge"
	case errors.Is(err, common.ErrChallengeConsumed):
		return http.StatusGone, "challenge_consumed"
	case errors.Is(err, common.ErrInvalidProof):
		return http.StatusUnauthorized, "invalid_proof"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code := statusAndCode(err)

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "operation", operation, "error", err)
	}
	s.metrics.Record(operation, code)

	// internal detail never leaks to the client
	msg := code
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}

	s.respondJSON(w, r, status, errorResponse{
		Code:      code,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(r.Context(), "writing response failed", "error", err)
	}
}
