package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// LoadConfig builds an OAuth2 config from a Google client credentials file
// (the JSON downloaded from the Cloud console). Only read-only Gmail access
// is requested.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return conf, nil
}

// HasToken checks if a token file exists.
func HasToken(tokenFile string) bool {
	_, err := os.Stat(tokenFile)
	return err == nil
}

// GetAuthURL returns the OAuth URL for user authorization.
func GetAuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// SaveToken exchanges an authorization code for tokens and writes them to
// the token file as JSON.
func SaveToken(ctx context.Context, conf *oauth2.Config, tokenFile, authCode string) error {
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(tokenFile, t)
}

func writeToken(tokenFile string, t *oauth2.Token) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func readToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found at %s", tokenFile)
	}
	t := &oauth2.Token{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	return t, nil
}

// GetTokenSource returns an OAuth2 token source backed by the stored token,
// refreshing it as needed. The refreshed token is written back to the file
// so the next run skips the refresh round-trip.
func GetTokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	conf, err := LoadConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	cached, err := readToken(tokenFile)
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx, cached)

	// Validate the token and persist a refreshed one.
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}
	if fresh.AccessToken != cached.AccessToken {
		if err := writeToken(tokenFile, fresh); err != nil {
			return nil, err
		}
	}

	return ts, nil
}

// GetHTTPClient returns an HTTP client configured with OAuth2 authentication.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	ts, err := GetTokenSource(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}
