// Package google provides OAuth2 authentication and token management for
// the Gmail API.
//
// Tokens are cached as JSON on disk next to the client credentials file.
// First-time authorization follows the installed-app flow: the CLI prints
// the consent URL, the user pastes the authorization code back, and the
// exchanged token is written to the token file for subsequent runs.
package google
