package google

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestHasToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")

	if HasToken(tokenFile) {
		t.Error("HasToken() should return false for missing file")
	}

	if err := os.WriteFile(tokenFile, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !HasToken(tokenFile) {
		t.Error("HasToken() should return true once the file exists")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")

	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := writeToken(tokenFile, want); err != nil {
		t.Fatalf("writeToken() error = %v", err)
	}

	// Token files carry credentials and must not be world-readable.
	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %o, want 600", info.Mode().Perm())
	}

	got, err := readToken(tokenFile)
	if err != nil {
		t.Fatalf("readToken() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("readToken() = %+v, want %+v", got, want)
	}
}

func TestReadTokenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := readToken(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("readToken() should fail for a missing file")
	}

	badFile := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badFile, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readToken(badFile); err == nil || !strings.Contains(err.Error(), "invalid token format") {
		t.Errorf("readToken() error = %v, want invalid token format", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to read credentials file") {
		t.Errorf("LoadConfig() error = %v, want read failure", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	credFile := filepath.Join(dir, "credentials.json")
	credJSON := `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(credFile, []byte(credJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadConfig(credFile)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if conf.ClientID != "id.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", conf.ClientID)
	}
	if len(conf.Scopes) != 1 || !strings.Contains(conf.Scopes[0], "gmail.readonly") {
		t.Errorf("Scopes = %v, want gmail.readonly only", conf.Scopes)
	}

	url := GetAuthURL(conf)
	if !strings.Contains(url, "access_type=offline") {
		t.Errorf("auth URL %q should request offline access", url)
	}
}
