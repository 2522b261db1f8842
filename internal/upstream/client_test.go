package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/upstream"
)

// newUpstream starts a fake time-tracking API that serves body for every
// request and records the last request it saw.
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *atomic.Pointer[http.Request]) {
	t.Helper()
	var last atomic.Pointer[http.Request]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.Store(r.Clone(context.Background()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestClient_Clients_FiltersAndSorts(t *testing.T) {
	srv, last := newUpstream(t, http.StatusOK, `[
		{"id": 3, "name": "zeta", "visible": true},
		{"id": 1, "name": "Alpha"},
		{"id": 2, "name": "hidden", "visible": false},
		{"id": 4, "name": null},
		{"id": 5, "name": "beta"}
	]`)
	c := upstream.New(upstream.Config{BaseURL: srv.URL + "/", Token: "secret"})

	got, err := c.Clients(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.LookupItem{
		{ID: 4, Name: ""},
		{ID: 1, Name: "Alpha"},
		{ID: 5, Name: "beta"},
		{ID: 3, Name: "zeta"},
	}, got)
	req := last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/api/customers", req.URL.Path)
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-AUTH-TOKEN"))
}

func TestClient_Projects_ScopedByClient(t *testing.T) {
	srv, last := newUpstream(t, http.StatusOK, `[{"id": 9, "name": "Road"}, {"id": 8, "name": "bridge"}]`)
	c := upstream.New(upstream.Config{BaseURL: srv.URL, Token: "secret"})

	got, err := c.Projects(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, []domain.LookupItem{{ID: 8, Name: "bridge"}, {ID: 9, Name: "Road"}}, got)
	req := last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/api/projects", req.URL.Path)
	assert.Equal(t, "42", req.URL.Query().Get("customer"))
}

func TestClient_XAuthMode_SendsHeaderPair(t *testing.T) {
	srv, last := newUpstream(t, http.StatusOK, `[]`)
	c := upstream.New(upstream.Config{
		BaseURL:  srv.URL,
		Token:    "secret",
		Username: "dispatch",
		Mode:     upstream.AuthXAuth,
	})

	got, err := c.Clients(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
	req := last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "dispatch", req.Header.Get("X-AUTH-USER"))
	assert.Equal(t, "secret", req.Header.Get("X-AUTH-TOKEN"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClient_NotConfigured_NoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	cases := map[string]upstream.Config{
		"no base URL":         {Token: "secret"},
		"no token":            {BaseURL: srv.URL},
		"xauth with no user":  {BaseURL: srv.URL, Token: "secret", Mode: upstream.AuthXAuth},
		"xauth with no token": {BaseURL: srv.URL, Username: "dispatch", Mode: upstream.AuthXAuth},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			c := upstream.New(cfg)

			_, err := c.Clients(context.Background())
			assert.ErrorIs(t, err, domain.ErrNotConfigured)

			_, err = c.Projects(context.Background(), "1")
			assert.ErrorIs(t, err, domain.ErrNotConfigured)
		})
	}
	assert.Zero(t, calls.Load())
}

func TestClient_Non2xx_UpstreamError(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	c := upstream.New(upstream.Config{BaseURL: srv.URL, Token: "wrong"})

	_, err := c.Clients(context.Background())

	require.ErrorIs(t, err, domain.ErrUpstream)
	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.Status)
	assert.Equal(t, upstream.ResourceClients, upErr.Resource)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestClient_UndecodableBody_UpstreamError(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `<html>maintenance</html>`)
	c := upstream.New(upstream.Config{BaseURL: srv.URL, Token: "secret"})

	_, err := c.Projects(context.Background(), "1")

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrNotConfigured)
}

func TestClient_Unreachable_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := upstream.New(upstream.Config{BaseURL: url, Token: "secret"})

	_, err := c.Clients(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestClient_CanceledCaller_CallStillCompletes(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `[{"id": 1, "name": "Acme"}]`)
	c := upstream.New(upstream.Config{BaseURL: srv.URL, Token: "secret"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.Clients(ctx)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
