package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sumire/phlink/internal/domain"
)

const viewerQuery = `query { viewer { user { id name username profileImage } } }`

// ProductHuntConfig holds provider endpoints and client credentials. The
// endpoint URLs are configurable so tests can point the client at a fake
// provider.
type ProductHuntConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	GraphQLURL   string
}

// ProductHuntClient talks to the Product Hunt OAuth and GraphQL APIs.
type ProductHuntClient struct {
	oauth      *oauth2.Config
	graphqlURL string
	httpClient *http.Client
}

// NewProductHuntClient creates a new ProductHuntClient. Outbound calls are
// bounded by a 10s client timeout so a stalled provider cannot hang the
// request indefinitely.
func NewProductHuntClient(cfg ProductHuntConfig) *ProductHuntClient {
	return &ProductHuntClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		graphqlURL: cfg.GraphQLURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL returns the provider consent URL for the given state.
func (c *ProductHuntClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token set. Codes are single
// use, so there is exactly one attempt; every failure mode surfaces as an
// UpstreamError carrying whatever the provider sent back.
func (c *ProductHuntClient) Exchange(ctx context.Context, code string) (domain.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return domain.TokenSet{}, &domain.UpstreamError{
				Op:      "token exchange",
				Message: fmt.Sprintf("provider returned status %d", re.Response.StatusCode),
				Payload: string(re.Body),
			}
		}
		return domain.TokenSet{}, &domain.UpstreamError{Op: "token exchange", Message: err.Error()}
	}

	// Providers have been seen returning 200 with an error body and no token.
	if tok.AccessToken == "" {
		return domain.TokenSet{}, &domain.UpstreamError{Op: "token exchange", Message: "no access token in provider response"}
	}

	set := domain.TokenSet{AccessToken: tok.AccessToken}
	if tok.RefreshToken != "" {
		set.RefreshToken = &tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		set.ExpiresAt = &expiry
	}
	return set, nil
}

type viewerFields struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

type viewerResponse struct {
	Data struct {
		Viewer *struct {
			viewerFields
			User *viewerFields `json:"user"`
		} `json:"viewer"`
	} `json:"data"`
}

// FetchProfile queries the GraphQL API for the authenticated viewer. The
// account fields are nested under viewer.user on current API versions and
// directly under viewer on older ones; both shapes are accepted.
func (c *ProductHuntClient) FetchProfile(ctx context.Context, accessToken string) (*domain.ProviderProfile, error) {
	body, err := json.Marshal(map[string]string{"query": viewerQuery})
	if err != nil {
		return nil, fmt.Errorf("marshal viewer query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "profile fetch", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "profile fetch", Message: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Op:      "profile fetch",
			Message: fmt.Sprintf("provider returned status %d", resp.StatusCode),
			Payload: string(raw),
		}
	}

	var decoded viewerResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.UpstreamError{
			Op:      "profile fetch",
			Message: "malformed profile response: " + err.Error(),
			Payload: string(raw),
		}
	}

	viewer := decoded.Data.Viewer
	if viewer == nil {
		return nil, &domain.UpstreamError{
			Op:      "profile fetch",
			Message: "malformed profile response: missing viewer",
			Payload: string(raw),
		}
	}

	fields := viewer.viewerFields
	if viewer.User != nil {
		fields = *viewer.User
	}

	if fields.ID == "" || fields.Username == "" {
		return nil, &domain.UpstreamError{
			Op:      "profile fetch",
			Message: "malformed profile response: missing viewer identity fields",
			Payload: string(raw),
		}
	}

	profile := &domain.ProviderProfile{
		ProviderUserID: fields.ID,
		DisplayName:    fields.Name,
		Username:       fields.Username,
	}
	if fields.ProfileImage != "" {
		profile.AvatarURL = &fields.ProfileImage
	}
	return profile, nil
}
