package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider implements the OAuth 2.0 authorization-code flow against an
// identity provider that publishes an OIDC discovery document (Gitea does).
// Issuing and refreshing tokens is the provider's job; this type only
// drives the exchange and reads the userinfo claims.
type Provider struct {
	clientID     string
	clientSecret string
	redirectURL  string

	authorizeURL string
	tokenURL     string
	userinfoURL  string

	client *http.Client
}

// Discover builds a Provider from the issuer's discovery document at
// <issuerURL>/.well-known/openid-configuration.
func Discover(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string) (*Provider, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	endpoint, err := url.JoinPath(issuerURL, "/.well-known/openid-configuration")
	if err != nil {
		return nil, fmt.Errorf("building discovery URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching discovery document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("discovery document request failed: %s", resp.Status)
	}

	var doc struct {
		AuthorizationEndpoint string `json:"authorization_endpoint"`
		TokenEndpoint         string `json:"token_endpoint"`
		UserinfoEndpoint      string `json:"userinfo_endpoint"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding discovery document: %w", err)
	}
	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.UserinfoEndpoint == "" {
		return nil, fmt.Errorf("discovery document is missing required endpoints")
	}

	return &Provider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		authorizeURL: doc.AuthorizationEndpoint,
		tokenURL:     doc.TokenEndpoint,
		userinfoURL:  doc.UserinfoEndpoint,
		client:       client,
	}, nil
}

// AuthCodeURL returns the authorization endpoint URL the browser is sent to,
// carrying the given anti-forgery state value.
func (p *Provider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("response_type", "code")
	q.Set("state", state)
	return p.authorizeURL + "?" + q.Encode()
}

// Exchange trades an authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("redirect_uri", p.redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	var raw struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if raw.Error != "" {
		return "", fmt.Errorf("token endpoint returned error: %s", raw.Error)
	}
	if raw.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}
	return raw.AccessToken, nil
}

// Userinfo fetches the profile claims for the given access token.
// Name falls back to preferred_username when the provider sends no name.
func (p *Provider) Userinfo(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Identity{}, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var claims struct {
		Sub               string `json:"sub"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		Picture           string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return Identity{}, fmt.Errorf("decoding userinfo: %w", err)
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	return Identity{
		Subject:   claims.Sub,
		Name:      name,
		Email:     claims.Email,
		AvatarURL: claims.Picture,
	}, nil
}
