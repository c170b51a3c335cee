package applejwt

import (
	"strings"

	"golang.org/x/oauth2"
)

// Endpoint is the Sign in with Apple OAuth 2.0 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://appleid.apple.com/auth/authorize",
	TokenURL:  "https://appleid.apple.com/auth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DefaultScopes are the scopes Supabase requests from Apple.
var DefaultScopes = []string{"name", "email"}

// OAuth2Config returns an oauth2 client configuration that authenticates with
// the Services ID and a signed client secret.
func OAuth2Config(cfg Config, clientSecret, redirectURL string, scopes ...string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     strings.TrimSpace(cfg.ServiceID),
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       append([]string(nil), scopes...),
	}
}

// AuthorizeURL builds the Apple authorize URL for a smoke test of the integration.
//
// Apple requires response_mode=form_post whenever name or email scopes are requested.
func AuthorizeURL(conf *oauth2.Config, state string) string {
	opts := []oauth2.AuthCodeOption{}
	if len(conf.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", "form_post"))
	}
	return conf.AuthCodeURL(state, opts...)
}
