package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLoginFailed wraps the message the server gave for a rejected login.
	ErrLoginFailed = errors.New("login failed")
	// ErrNotAdmin means the credentials are valid but cannot upload.
	ErrNotAdmin = errors.New("account is not an administrator")
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	User    struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login signs in with email and password. On success the session cookie is
// stored in the App's cookie jar.
func (a *App) Login(ctx context.Context, email string, password []byte) error {
	endpoint, err := a.endpoint("api", "login")
	if err != nil {
		return err
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("login: server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrLoginFailed, e.Error)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("login: decode response: %w", err)
	}
	if !lr.User.IsAdmin {
		return ErrNotAdmin
	}

	a.logger.Debug(ctx, "logged in", "email", lr.User.Email)
	return nil
}
