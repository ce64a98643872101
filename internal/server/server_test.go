package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/rcli/internal/config"
	"github.com/ginjaninja78/rcli/internal/csvparser"
	"github.com/ginjaninja78/rcli/internal/genpass"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()
	opts := Options{
		Settings: config.ServerSettings{
			Addr:            "127.0.0.1:0",
			RateLimit:       1000,
			Burst:           1000,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: time.Second,
		},
		CSV:     csvparser.DefaultSettings(),
		Genpass: genpass.DefaultOptions(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestConvert(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{
			name:        "default json",
			target:      "/api/v1/convert",
			body:        "Name,Age\nAlice,30\n",
			contentType: "application/json",
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `[{"Name":"Alice","Age":"30"}]`, string(body))
			},
		},
		{
			name:        "yaml with pipe delimiter",
			target:      "/api/v1/convert?format=yaml&delimiter=pipe",
			body:        "Name|Age\nBob|41\n",
			contentType: "application/yaml",
			check: func(t *testing.T, body []byte) {
				var got []map[string]string
				require.NoError(t, yaml.Unmarshal(body, &got))
				assert.Equal(t, []map[string]string{{"Name": "Bob", "Age": "41"}}, got)
			},
		},
		{
			name:        "toml without header",
			target:      "/api/v1/convert?format=toml&header=false",
			body:        "x,y\n",
			contentType: "application/toml",
			check: func(t *testing.T, body []byte) {
				var doc struct {
					Data []map[string]string `toml:"data"`
				}
				require.NoError(t, toml.Unmarshal(body, &doc))
				assert.Equal(t, []map[string]string{{"Column_1": "x", "Column_2": "y"}}, doc.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			tt.check(t, rec.Body.Bytes())
		})
	}
}

func TestConvertErrors(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Settings.MaxBodyBytes = 64 })

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown format", "/api/v1/convert?format=xml", "a\n1\n", http.StatusBadRequest},
		{"bad delimiter", "/api/v1/convert?delimiter=ab", "a\n1\n", http.StatusBadRequest},
		{"bad header flag", "/api/v1/convert?header=maybe", "a\n1\n", http.StatusBadRequest},
		{"unknown encoding", "/api/v1/convert?encoding=klingon", "a\n1\n", http.StatusBadRequest},
		{"ragged row", "/api/v1/convert", "a,b\n1\n", http.StatusBadRequest},
		{"empty body", "/api/v1/convert", "", http.StatusBadRequest},
		{"body too large", "/api/v1/convert", "a\n" + strings.Repeat("1\n", 100), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGenpass(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/genpass",
		`{"length": 24, "uppercase": true, "lowercase": true, "symbols": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Password, 24)
	assert.Equal(t, 24, resp.Length)
	assert.GreaterOrEqual(t, resp.Score, 0)
	assert.LessOrEqual(t, resp.Score, 4)
	assert.NotEmpty(t, resp.Strength)
}

func TestGenpassDefaults(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/genpass", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Password, 16)
	for _, ch := range resp.Password {
		assert.True(t, ch >= '0' && ch <= '9', "default password is digits only")
	}
}

func TestGenpassErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"no classes", `{"digits": false}`, http.StatusBadRequest},
		{"length below classes", `{"length": 2, "uppercase": true, "lowercase": true, "digits": true}`, http.StatusBadRequest},
		{"too long", `{"length": 256}`, http.StatusBadRequest},
		{"malformed body", `{"length":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/v1/genpass", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(o *Options) {
		o.Settings.RateLimit = 0.001
		o.Settings.Burst = 2
	})

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "").Code)

	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiterEvict(t *testing.T) {
	rl := newIPRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("10.0.0.2")

	rl.evict(time.Minute)

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
