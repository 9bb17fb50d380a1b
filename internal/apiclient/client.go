// Package apiclient calls the boba-kart API from the web tier.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"boba-kart/internal/model"

	"github.com/rs/zerolog"
)

// Client is a typed client for the public API endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a client for the API at baseURL. A nil httpClient gets a
// client with the given timeout.
func New(baseURL string, httpClient *http.Client, timeout time.Duration, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "api-client").Logger(),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	body := model.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Drink fetches a non-deleted drink.
func (c *Client) Drink(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Topping fetches a non-deleted topping.
func (c *Client) Topping(ctx context.Context, id string) (*model.Topping, error) {
	var t model.Topping
	if err := c.do(ctx, http.MethodGet, "/toppings/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("API request failed")
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}

// decodeError turns an API error response back into a DomainError so the
// web tier can answer with the same status.
func decodeError(resp *http.Response) error {
	var body model.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	kind, ok := kindFor(resp.StatusCode)
	if !ok {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, body.Error)
	}
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &model.DomainError{
		Kind:    kind,
		Code:    body.Code,
		Message: body.Error,
		Fields:  body.Fields,
	}
}

func kindFor(status int) (model.ErrorKind, bool) {
	switch status {
	case http.StatusBadRequest:
		return model.KindValidation, true
	case http.StatusUnauthorized:
		return model.KindAuthentication, true
	case http.StatusForbidden:
		return model.KindAuthorization, true
	case http.StatusNotFound:
		return model.KindNotFound, true
	case http.StatusConflict:
		return model.KindConflict, true
	}
	return 0, false
}
