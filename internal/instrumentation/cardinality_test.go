package instrumentation

import "testing"

func TestExtractSenderDomain(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{"valid email", "jane@example.com", "example.com"},
		{"gmail address", "user@gmail.com", "gmail.com"},
		{"subdomain", "alerts@mail.example.org", "mail.example.org"},
		{"no at sign", "invalid", "unknown"},
		{"empty string", "", "unknown"},
		{"trailing at sign", "user@", "unknown"},
		{"multiple at signs", "a@b@c", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractSenderDomain(tt.email)
			if result != tt.expected {
				t.Errorf("ExtractSenderDomain(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}
