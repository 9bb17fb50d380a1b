package apiclient

import (
	"context"
	"net/http"
	"time"

	"boba-kart/internal/tokencache"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Credentials identify the service account used for admin calls.
type Credentials struct {
	Email    string
	Password string
}

// Provider hands out HTTP clients that carry the service account's bearer
// token, logging in again when the cached token has expired.
type Provider struct {
	client        *Client
	cache         tokencache.Cache
	creds         Credentials
	refreshMargin time.Duration
	minCache      time.Duration
	base          http.RoundTripper
	group         singleflight.Group
	logger        zerolog.Logger
}

// NewProvider creates a provider. Tokens are cached for the token lifetime
// minus refreshMargin, but never less than minCache.
func NewProvider(client *Client, cache tokencache.Cache, creds Credentials, refreshMargin, minCache time.Duration, logger zerolog.Logger) *Provider {
	return &Provider{
		client:        client,
		cache:         cache,
		creds:         creds,
		refreshMargin: refreshMargin,
		minCache:      minCache,
		base:          http.DefaultTransport,
		logger:        logger.With().Str("component", "token-provider").Logger(),
	}
}

func (p *Provider) cacheKey() string {
	return "service-account:" + p.creds.Email
}

// AuthorizedClient returns a client whose requests carry the service
// account token. When no token can be obtained the client sends requests
// without an Authorization header.
func (p *Provider) AuthorizedClient(ctx context.Context) *http.Client {
	token, _ := p.Token(ctx)
	return &http.Client{
		Timeout:   p.client.httpClient.Timeout,
		Transport: &bearerTransport{token: token, base: p.base},
	}
}

// Transport returns a RoundTripper that resolves the token per request.
func (p *Provider) Transport() http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		token, _ := p.Token(req.Context())
		return (&bearerTransport{token: token, base: p.base}).RoundTrip(req)
	})
}

// Token returns a cached token or logs in for a fresh one. Concurrent
// misses share a single login.
func (p *Provider) Token(ctx context.Context) (string, bool) {
	key := p.cacheKey()
	if token, ok := p.cache.Get(key); ok {
		return token, true
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		if token, ok := p.cache.Get(key); ok {
			return token, nil
		}

		// The login outlives any single caller; the client timeout bounds it.
		resp, err := p.client.Login(context.WithoutCancel(ctx), p.creds.Email, p.creds.Password)
		if err != nil {
			return "", err
		}

		ttl := time.Duration(resp.ExpiresIn)*time.Second - p.refreshMargin
		if ttl < p.minCache {
			ttl = p.minCache
		}
		p.cache.Set(key, resp.Token, ttl)

		p.logger.Debug().Dur("ttl", ttl).Msg("service account token cached")
		return resp.Token, nil
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("service account login failed, continuing without token")
		return "", false
	}
	return v.(string), true
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
