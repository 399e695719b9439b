package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.AuthConfig{
		Endpoint:     endpoint,
		Timeout:      2 * time.Second,
		RedirectPath: "/dashboard",
	}, zap.NewNop(), nil)
}

func TestLogin_SendsMultipartForm(t *testing.T) {
	var got map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		got = r.MultipartForm.Value
		assert.Equal(t, "login", r.URL.Query().Get("show"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL+"/cp/?show=login&act=auth&key=").
		Login(context.Background(), Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "/dashboard", res.Redirect)
	assert.Equal(t, []string{"admin"}, got["name"])
	assert.Equal(t, []string{"secret"}, got["password"])
	assert.Equal(t, []string{""}, got["redirect"])
}

func TestLogin_NonSuccessStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Login(context.Background(), Credentials{Username: "a", Password: "b"})
	require.ErrorIs(t, err, domain.ErrLoginRejected)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, 1, calls, "login must not be retried")
}

func TestLogin_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Login(context.Background(), Credentials{Username: "a", Password: "b"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLoginRejected)
}

func TestLogin_MissingCredentials(t *testing.T) {
	_, err := newTestClient("http://unused").Login(context.Background(), Credentials{Username: " "})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
