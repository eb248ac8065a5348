package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GitHub implements Provider using GitHub's OAuth2 endpoints.
//
// GitHub does not always expose an email on the user object, so the primary
// verified address is looked up via the emails endpoint.
type GitHub struct {
	config    *oauth2.Config
	userURL   string
	emailsURL string
}

// NewGitHub creates a GitHub provider.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     endpoints.GitHub,
		},
		userURL:   githubUserURL,
		emailsURL: githubEmailsURL,
	}
}

func (g *GitHub) Name() string { return "GITHUB" }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

func (g *GitHub) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := g.config.Client(ctx, token)

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(client, g.userURL, &user); err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	email := user.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, g.emailsURL, &emails); err != nil {
			return nil, fmt.Errorf("fetch emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github profile has no verified email")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &Profile{
		Provider:   g.Name(),
		ProviderID: strconv.FormatInt(user.ID, 10),
		Email:      email,
		Name:       name,
	}, nil
}

func getJSON(client *http.Client, url string, dst any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
