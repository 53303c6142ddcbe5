package gmail

import (
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		errContains string
	}{
		{
			name:  "simple valid query",
			query: "is:unread is:important",
		},
		{
			name:  "from with address",
			query: "from:boss@example.com",
		},
		{
			name:  "quoted subject",
			query: `subject:"quarterly report"`,
		},
		{
			name:  "date range",
			query: "after:2026/01/01 before:2026-02-01",
		},
		{
			name:  "relative dates",
			query: "newer_than:7d older_than:1m",
		},
		{
			name:  "size operators",
			query: "larger:5M smaller:10M size:1024",
		},
		{
			name:  "bare terms without operators",
			query: "project deadline",
		},
		{
			name:  "negated operator",
			query: "-from:noreply@example.com is:unread",
		},
		{
			name:        "empty query",
			query:       "   ",
			errContains: "must not be empty",
		},
		{
			name:        "unbalanced quotes",
			query:       `subject:"unclosed`,
			errContains: "unbalanced quotes",
		},
		{
			name:        "unknown operator",
			query:       "sender:boss@example.com",
			errContains: `unknown operator "sender"`,
		},
		{
			name:        "misspelled operator gets suggestion",
			query:       "form:boss@example.com",
			errContains: `did you mean "from"`,
		},
		{
			name:        "misspelled subject gets suggestion",
			query:       "subjet:report",
			errContains: `did you mean "subject"`,
		},
		{
			name:        "invalid is value",
			query:       "is:urgent",
			errContains: `invalid value "urgent" for is:`,
		},
		{
			name:        "invalid has value",
			query:       "has:pictures",
			errContains: `invalid value "pictures" for has:`,
		},
		{
			name:        "invalid in value",
			query:       "in:junk",
			errContains: `invalid value "junk" for in:`,
		},
		{
			name:        "malformed date",
			query:       "after:yesterday",
			errContains: "invalid date",
		},
		{
			name:        "malformed relative date",
			query:       "older_than:7days",
			errContains: "invalid relative date",
		},
		{
			name:        "malformed size",
			query:       "larger:big",
			errContains: "invalid size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("ValidateQuery(%q) = %v, want nil", tt.query, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateQuery(%q) = nil, want error containing %q", tt.query, tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateQuery(%q) error = %q, want it to contain %q", tt.query, err.Error(), tt.errContains)
			}
		})
	}
}
