package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Google implements Provider using Google's OAuth2 endpoints.
type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogle creates a Google provider. redirectURL must match the callback
// registered in the Google console.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string { return "GOOGLE" }

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

func (g *Google) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if info.Email == "" || !info.EmailVerified {
		return nil, fmt.Errorf("google profile has no verified email")
	}

	return &Profile{
		Provider:   g.Name(),
		ProviderID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
	}, nil
}
