package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chorescape-server/config"
	"chorescape-server/types"
)

// IdentityService talks to the external identity provider's REST API.
// The server never stores passwords; signup and login are proxied and
// only the resulting tokens and user identifiers flow back to clients.
type IdentityService struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewIdentityService(cfg *config.Config) *IdentityService {
	return &IdentityService{
		baseURL:    cfg.Identity.URL,
		serviceKey: cfg.Identity.ServiceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IdentityUser is the subset of the provider's user object we care
// about.
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentitySession carries the tokens returned by signup and login.
type IdentitySession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         IdentityUser `json:"user"`
}

type identityError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e *identityError) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return "Identity provider request failed"
}

// SignUp registers a new credential pair with the provider.
func (s *IdentityService) SignUp(email, password string) (*IdentitySession, *types.AppError) {
	var session IdentitySession
	appErr := s.post("/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	}, false, &session)
	if appErr != nil {
		return nil, appErr
	}
	return &session, nil
}

// SignIn exchanges credentials for a session via the password grant.
func (s *IdentityService) SignIn(email, password string) (*IdentitySession, *types.AppError) {
	var session IdentitySession
	appErr := s.post("/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, false, &session)
	if appErr != nil {
		return nil, appErr
	}
	return &session, nil
}

// AdminCreateUser creates a confirmed user with the service key. Used
// when an admin provisions worker accounts.
func (s *IdentityService) AdminCreateUser(email, password string) (*IdentityUser, *types.AppError) {
	var user IdentityUser
	appErr := s.post("/auth/v1/admin/users", map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}, true, &user)
	if appErr != nil {
		return nil, appErr
	}
	return &user, nil
}

func (s *IdentityService) post(path string, payload interface{}, admin bool, out interface{}) *types.AppError {
	if s.baseURL == "" {
		return types.UpstreamUnavailable("Identity provider is not configured", nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return types.Internal("Failed to encode identity request", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return types.Internal("Failed to build identity request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return types.UpstreamUnavailable("Identity provider is unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.UpstreamUnavailable("Failed to read identity response", err)
	}

	if resp.StatusCode >= 500 {
		return types.UpstreamUnavailable("Identity provider error", fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		var provErr identityError
		_ = json.Unmarshal(data, &provErr)
		if resp.StatusCode == http.StatusUnauthorized {
			return types.Unauthenticated(provErr.message())
		}
		if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity {
			return types.Conflict(provErr.message())
		}
		return types.Validation("%s", provErr.message())
	}

	if err := json.Unmarshal(data, out); err != nil {
		return types.UpstreamUnavailable("Unexpected identity response", err)
	}
	return nil
}
