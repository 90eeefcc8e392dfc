package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/phlink/internal/domain"
)

func newTestClient(srv *httptest.Server) *ProductHuntClient {
	return NewProductHuntClient(ProductHuntConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://example.com/auth/producthunt/callback",
		AuthURL:      srv.URL + "/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		GraphQLURL:   srv.URL + "/graphql",
	})
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "code-1", r.FormValue("code"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		assert.Equal(t, "https://example.com/auth/producthunt/callback", r.FormValue("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer srv.Close()

	tokens, err := newTestClient(srv).Exchange(context.Background(), "code-1")
	require.NoError(t, err)

	assert.Equal(t, "at-1", tokens.AccessToken)
	require.NotNil(t, tokens.RefreshToken)
	assert.Equal(t, "rt-1", *tokens.RefreshToken)
	require.NotNil(t, tokens.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *tokens.ExpiresAt, time.Minute)
}

func TestExchangeWithoutExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	tokens, err := newTestClient(srv).Exchange(context.Background(), "code-1")
	require.NoError(t, err)

	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Nil(t, tokens.RefreshToken)
	assert.Nil(t, tokens.ExpiresAt)
}

func TestExchangeMissingAccessToken(t *testing.T) {
	// Providers have been seen answering 200 with an error body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code already used"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Exchange(context.Background(), "code-1")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "token exchange", upstreamErr.Op)
}

func TestExchangeProviderErrorCarriesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Exchange(context.Background(), "code-1")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Contains(t, upstreamErr.Message, "401")
	assert.Contains(t, upstreamErr.Payload, "invalid_client")
}

func TestFetchProfileNestedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"viewer":{"user":{"id":"7","name":"Ann","username":"ann","profileImage":"https://img.test/a.png"}}}}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(srv).FetchProfile(context.Background(), "at-1")
	require.NoError(t, err)

	assert.Equal(t, "7", profile.ProviderUserID)
	assert.Equal(t, "Ann", profile.DisplayName)
	assert.Equal(t, "ann", profile.Username)
	require.NotNil(t, profile.AvatarURL)
	assert.Equal(t, "https://img.test/a.png", *profile.AvatarURL)
}

func TestFetchProfileFlatViewer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"viewer":{"id":"7","name":"Ann","username":"ann"}}}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(srv).FetchProfile(context.Background(), "at-1")
	require.NoError(t, err)

	assert.Equal(t, "7", profile.ProviderUserID)
	assert.Equal(t, "ann", profile.Username)
	assert.Nil(t, profile.AvatarURL)
}

func TestFetchProfileMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing viewer", body: `{"data":{}}`},
		{name: "missing identity fields", body: `{"data":{"viewer":{"user":{"name":"Ann"}}}}`},
		{name: "not json", body: `<html>rate limited</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).FetchProfile(context.Background(), "at-1")
			require.Error(t, err)

			var upstreamErr *domain.UpstreamError
			require.True(t, errors.As(err, &upstreamErr))
			assert.Equal(t, tt.body, upstreamErr.Payload, "the raw payload must survive for diagnosis")
		})
	}
}

func TestFetchProfileHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchProfile(context.Background(), "at-1")
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Contains(t, upstreamErr.Message, "401")
	assert.Contains(t, upstreamErr.Payload, "invalid_token")
}
