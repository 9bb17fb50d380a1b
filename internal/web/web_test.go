package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boba-kart/internal/cart"
	"boba-kart/internal/config"
	"boba-kart/internal/handler"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const drinkID = "65f2a1b2c3d4e5f6a7b8c9d0"

// MockAuthenticator is a mock implementation of Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

// fixedPricer prices every line at price.
type fixedPricer struct {
	price decimal.Decimal
}

func (p *fixedPricer) Line(_ context.Context, req cart.AddRequest) (cart.LineItem, error) {
	if !model.IsValidID(req.DrinkID) {
		return cart.LineItem{}, model.NewValidationError("cart item is invalid", map[string]string{"drinkId": "invalid"})
	}
	size, ok := model.ParseSize(req.Size)
	if !ok {
		size = model.SizeMedium
	}
	item := cart.LineItem{DrinkID: req.DrinkID, Size: size, SugarPct: 50, IcePct: 50, UnitPrice: p.price, Quantity: req.Quantity}
	item.Key = cart.LineKey(item.DrinkID, item.Size, item.SugarPct, item.IcePct, item.ToppingSummary)
	return item, nil
}

func (p *fixedPricer) Reprice(context.Context, cart.LineItem) (decimal.Decimal, error) {
	return p.price, nil
}

type testEnv struct {
	server   http.Handler
	auth     *MockAuthenticator
	pricer   *fixedPricer
	sessions *cart.SessionStore
	upstream *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{
			"method":        r.Method,
			"path":          r.URL.Path,
			"query":         r.URL.RawQuery,
			"authorization": r.Header.Get("Authorization"),
			"cookie":        r.Header.Get("Cookie"),
		})
	}))
	t.Cleanup(upstream.Close)

	bearer := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer service-token")
		return http.DefaultTransport.RoundTrip(req)
	})
	proxy, err := NewAdminProxy(upstream.URL, bearer, logger)
	require.NoError(t, err)

	env := &testEnv{
		auth:     new(MockAuthenticator),
		pricer:   &fixedPricer{price: decimal.RequireFromString("6.50")},
		sessions: cart.NewSessionStore(30 * time.Minute),
		upstream: upstream,
	}
	h := NewHandler(env.auth, env.pricer, env.sessions, false, logger)
	env.server = NewRouter(h, handler.NewHealthHandler(nil, logger), proxy, config.CORSConfig{AllowedOrigins: []string{"*"}}, logger)
	return env
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// send performs a request carrying cookie, returning the response and the
// session cookie value after the call.
func (e *testEnv) send(t *testing.T, method, path, body, cookie string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return w, c.Value
		}
	}
	return w, cookie
}

func (e *testEnv) login(t *testing.T, roles ...string) string {
	t.Helper()
	e.auth.On("Login", mock.Anything, "kim@example.com", "pw").Return(&model.LoginResponse{
		Token: "user-token",
		User:  model.Profile{ID: drinkID, Email: "kim@example.com", Roles: roles},
	}, nil).Once()

	w, cookie := e.send(t, http.MethodPost, "/account/login", `{"email":"kim@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, cookie)
	return cookie
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) cart.Summary {
	t.Helper()
	var s cart.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestAccount(t *testing.T) {
	t.Run("Login sets an HttpOnly session cookie", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "kim@example.com", "pw").Return(&model.LoginResponse{
			Token: "user-token",
			User:  model.Profile{ID: drinkID, Email: "kim@example.com", Roles: []string{model.RoleCustomer}},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/account/login", strings.NewReader(`{"email":"kim@example.com","password":"pw"}`))
		w := httptest.NewRecorder()
		env.server.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.NotContains(t, w.Body.String(), "user-token")
	})

	t.Run("Failed login keeps the API status", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "kim@example.com", "bad").Return(nil, model.ErrInvalidCredentials)

		w, _ := env.send(t, http.MethodPost, "/account/login", `{"email":"kim@example.com","password":"bad"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me and logout", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, model.RoleCustomer)

		w, _ := env.send(t, http.MethodGet, "/account/me", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "kim@example.com")

		w, _ = env.send(t, http.MethodPost, "/account/logout", "", cookie)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, _ = env.send(t, http.MethodGet, "/account/me", "", cookie)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Login issues a new session id and keeps the cart", func(t *testing.T) {
		env := newTestEnv(t)
		_, before := env.send(t, http.MethodPost, "/cart/items", `{"drinkId":"`+drinkID+`","quantity":2}`, "")
		require.NotEmpty(t, before)

		env.auth.On("Login", mock.Anything, "kim@example.com", "pw").Return(&model.LoginResponse{
			Token: "user-token",
			User:  model.Profile{ID: drinkID, Email: "kim@example.com", Roles: []string{model.RoleAdmin}},
		}, nil).Once()
		w, after := env.send(t, http.MethodPost, "/account/login", `{"email":"kim@example.com","password":"pw"}`, before)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEqual(t, before, after)

		w, _ = env.send(t, http.MethodGet, "/cart/count", "", after)
		assert.JSONEq(t, `{"count":2}`, w.Body.String())

		w, _ = env.send(t, http.MethodGet, "/admin/api/products", "", before)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w, _ = env.send(t, http.MethodGet, "/admin/api/products", "", after)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Anonymous me", func(t *testing.T) {
		env := newTestEnv(t)
		w, _ := env.send(t, http.MethodGet, "/account/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCart(t *testing.T) {
	env := newTestEnv(t)

	w, cookie := env.send(t, http.MethodGet, "/cart", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, cookie)
	assert.Empty(t, decodeSummary(t, w).Items)

	add := `{"drinkId":"` + drinkID + `","size":"L","quantity":1,"unitPrice":"0.01"}`
	w, cookie = env.send(t, http.MethodPost, "/cart/items", add, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	add = `{"drinkId":"` + drinkID + `","size":"L","quantity":2}`
	w, cookie = env.send(t, http.MethodPost, "/cart/items", add, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeSummary(t, w)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, "6.5", summary.Items[0].UnitPrice.String())
	key := summary.Items[0].Key

	w, cookie = env.send(t, http.MethodGet, "/cart/count", "", cookie)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())

	env.pricer.price = decimal.RequireFromString("7.00")
	w, cookie = env.send(t, http.MethodPatch, "/cart/items", `{"key":"`+key+`","quantity":0}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	summary = decodeSummary(t, w)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, "7", summary.Subtotal.String())

	w, cookie = env.send(t, http.MethodPatch, "/cart/items", `{"key":"missing","quantity":2}`, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, cookie = env.send(t, http.MethodPost, "/cart/items", `{"drinkId":"bad"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, cookie = env.send(t, http.MethodDelete, "/cart/items?key="+key, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeSummary(t, w).Count)

	w, cookie = env.send(t, http.MethodDelete, "/cart/items?key="+key, "", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, cookie = env.send(t, http.MethodDelete, "/cart/items", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, cookie = env.send(t, http.MethodPost, "/cart/items", `{"drinkId":"`+drinkID+`"}`, cookie)
	w, cookie = env.send(t, http.MethodDelete, "/cart", "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = env.send(t, http.MethodGet, "/cart/count", "", cookie)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)

	_, first := env.send(t, http.MethodPost, "/cart/items", `{"drinkId":"`+drinkID+`","quantity":2}`, "")
	_, second := env.send(t, http.MethodGet, "/cart", "", "")
	require.NotEqual(t, first, second)

	w, _ := env.send(t, http.MethodGet, "/cart/count", "", second)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
	w, _ = env.send(t, http.MethodGet, "/cart/count", "", "stale-session-id")
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestAdminProxy(t *testing.T) {
	t.Run("Anonymous session", func(t *testing.T) {
		env := newTestEnv(t)
		w, _ := env.send(t, http.MethodGet, "/admin/api/products", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Customer session", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, model.RoleCustomer)
		w, _ := env.send(t, http.MethodGet, "/admin/api/products", "", cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin session is forwarded with the service token", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, model.RoleAdmin)

		w, _ := env.send(t, http.MethodDelete, "/admin/api/toppings/"+drinkID+"/purge?x=1", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var echoed map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &echoed))
		assert.Equal(t, http.MethodDelete, echoed["method"])
		assert.Equal(t, "/toppings/"+drinkID+"/purge", echoed["path"])
		assert.Equal(t, "x=1", echoed["query"])
		assert.Equal(t, "Bearer service-token", echoed["authorization"])
		assert.Empty(t, echoed["cookie"])
	})

	t.Run("Upstream down", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.login(t, model.RoleOwner)
		env.upstream.Close()

		w, _ := env.send(t, http.MethodGet, "/admin/api/products", "", cookie)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeUpstream, resp.Code)
	})
}

func TestNewAdminProxy_InvalidURL(t *testing.T) {
	_, err := NewAdminProxy("://bad", http.DefaultTransport, zerolog.Nop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.send(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}
