// Package social implements OAuth2 authorization-code login against external
// identity providers. A provider hands back a Profile, an identity assertion
// the auth service resolves to a local account.
package social

import "context"

// Profile is the normalized identity a provider asserts after a successful
// code exchange. Providers only return profiles with a verified email.
type Profile struct {
	Provider   string // canonical provider name, e.g. "GOOGLE"
	ProviderID string // subject id at the provider
	Email      string
	Name       string
}

// Provider is a single external identity provider.
type Provider interface {
	// Name returns the canonical provider name stored on linked accounts.
	Name() string
	// AuthCodeURL returns the provider URL to redirect the browser to.
	AuthCodeURL(state string) string
	// FetchProfile exchanges the authorization code and fetches the user's
	// profile from the provider.
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}
