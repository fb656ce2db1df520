// Package api implements the HTTP protocol client for the zkauth server.
package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	Username   string `json:"username"`
	PublicKeyY string `json:"publicKeyY"`
	Salt       string `json:"salt"`
}

type challengeRequest struct {
	Username string `json:"username"`
	ClientR  string `json:"clientR"`
}

// Challenge is the server's answer to a challenge request.
type Challenge struct {
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

// Token is an issued session token.
type Token struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expiresIn"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Register creates a new identity on the server.
func (c *Client) Register(ctx context.Context, username, publicKeyY string, salt []byte) error {
	return c.post(ctx, "/api/v1/auth/register", registerRequest{
		Username:   username,
		PublicKeyY: publicKeyY,
		Salt:       hex.EncodeToString(salt),
	}, nil)
}

// RequestChallenge asks the server for a fresh challenge bound to the given
// commitment.
func (c *Client) RequestChallenge(ctx context.Context, username, clientR string) (*Challenge, error) {
	var out Challenge
	if err := c.post(ctx, "/api/v1/auth/challenge", challengeRequest{Username: username, ClientR: clientR}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyProof submits the response scalar and returns the session token on
// success.
func (c *Client) VerifyProof(ctx context.Context, username, challengeID, s, clientR string) (*Token, error) {
	var out Token
	if err := c.post(ctx, "/api/v1/auth/verify", verifyRequest{
		Username:    username,
		ChallengeID: challengeID,
		S:           s,
		ClientR:     clientR,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// decodeError maps the server's stable error codes back onto the shared
// sentinel errors so callers can use errors.Is on both sides of the wire.
func decodeError(resp *http.Response) error {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var sentinel error
	switch er.Code {
	case "invalid_input":
		sentinel = common.ErrInvalidInput
	case "duplicate_user":
		sentinel = common.ErrDuplicateUser
	case "unknown_challenge":
		sentinel = common.ErrUnknownChallenge
	case "expired_challenge":
		sentinel = common.ErrExpiredChallenge
	case "challenge_consumed":
		sentinel = common.ErrChallengeConsumed
	case "invalid_proof":
		sentinel = common.ErrInvalidProof
	default:
		sentinel = common.ErrorInternal
	}
	return fmt.Errorf("%w: %s", sentinel, er.Message)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
