package gcp

import (
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// Config points the Google clients at a different host. Empty means the public APIs.
type Config struct {
	CalendarEndpoint string
	UserinfoEndpoint string
}

// userClientOptions authenticates as the signed-in user with the access token
// handed over by the browser after Google sign-in.
func userClientOptions(accessToken, endpoint string) []option.ClientOption {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(accessToken), TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}
