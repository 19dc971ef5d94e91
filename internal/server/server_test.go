package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Port:        8080,
		DatabaseURL: ":memory:",
		Secret:      "test-secret",
		JWTSecret:   "test-secret-at-least-16-chars!!",
		BcryptCost:  4,
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type envelope struct {
	Result      bool   `json:"result"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

func serve(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no secret", func(c *Config) { c.Secret = "" }, true},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"no database", func(c *Config) { c.DatabaseURL = "" }, true},
		{"no jwt secret", func(c *Config) { c.JWTSecret = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""
	_, err := New(cfg, slog.Default())
	assert.Error(t, err)
}

func TestNew_RejectsShortJWTSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "short"
	_, err := New(cfg, slog.Default())
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec, env := serve(t, s, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server status normal", env.Message)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec, env = serve(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", env.Message)

	rec, env = serve(t, s, http.MethodGet, "/api/register", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", env.Message)
}

// Every kind answers both its query and its submission route through the
// schema, so an empty body reaches the validator rather than the 404 handler.
func TestRecordRoutesMounted(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, kind := range []string{"food", "commute", "journal", "water", "showers", "entertainment", "health"} {
		for _, path := range []string{"/api/" + kind, "/api/" + kind + "/new"} {
			t.Run(path, func(t *testing.T) {
				rec, env := serve(t, s, http.MethodPost, path, "")
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.False(t, env.Result)
				assert.Equal(t, "Where's the JSON?", env.Message)
			})
		}
	}
}

func TestRegisterIssuesAccessToken(t *testing.T) {
	s := newTestServer(t, testConfig())

	_, env := serve(t, s, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"pw"}`)
	require.True(t, env.Result, env.Message)
	assert.NotEmpty(t, env.AccessToken)
}

func TestAccessTokensDisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	s := newTestServer(t, cfg)

	_, env := serve(t, s, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"pw"}`)
	require.True(t, env.Result, env.Message)
	assert.Empty(t, env.AccessToken)
}
