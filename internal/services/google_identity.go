package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrTokenExchange = errors.New("google token exchange failed")
	ErrProfileFetch  = errors.New("google profile fetch failed")
)

// GoogleScopes grant spreadsheet read/write plus profile and email.
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

const consentPrompt = "consent select_account"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserInfoURL  string
	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint
	Timeout  time.Duration
}

type GoogleIdentity struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
	httpClient   *http.Client
}

func NewGoogleIdentity(cfg GoogleConfig) *GoogleIdentity {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &GoogleIdentity{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       GoogleScopes,
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// AuthURL builds the consent request. forcePrompt asks Google to show the
// consent and account chooser even if the user already granted access.
func (g *GoogleIdentity) AuthURL(state string, forcePrompt bool) string {
	var opts []oauth2.AuthCodeOption
	if forcePrompt {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", consentPrompt))
	}
	return g.oauth2Config.AuthCodeURL(state, opts...)
}

func (g *GoogleIdentity) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	token, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}
	return token.AccessToken, nil
}

func (g *GoogleIdentity) FetchProfile(ctx context.Context, accessToken string) (*dto.UserProfile, error) {
	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, g.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var profile dto.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo: %v", ErrProfileFetch, err)
	}
	return &profile, nil
}
