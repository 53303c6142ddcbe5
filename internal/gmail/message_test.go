package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func textMessage(subject, from, body string) *gmail.Message {
	return &gmail.Message{
		Id:       "msg-1",
		ThreadId: "thread-1",
		Snippet:  "snippet text",
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: subject},
				{Name: "From", Value: from},
				{Name: "Date", Value: "Mon, 24 Aug 2026 09:00:00 +0000"},
			},
			Body: &gmail.MessagePartBody{Data: b64url(body)},
		},
	}
}

func TestParseMessage(t *testing.T) {
	msg := textMessage("Weekly report", "Alice <alice@example.com>", "The report is attached.")
	e := ParseMessage(msg)

	if e.ID != "msg-1" || e.ThreadID != "thread-1" {
		t.Errorf("IDs = %q/%q, want msg-1/thread-1", e.ID, e.ThreadID)
	}
	if e.Subject != "Weekly report" {
		t.Errorf("Subject = %q, want %q", e.Subject, "Weekly report")
	}
	if e.Sender != "Alice <alice@example.com>" {
		t.Errorf("Sender = %q", e.Sender)
	}
	if e.Body != "The report is attached." {
		t.Errorf("Body = %q", e.Body)
	}
}

func TestParseMessageDefaults(t *testing.T) {
	msg := &gmail.Message{Id: "msg-2", Snippet: "fallback snippet"}
	e := ParseMessage(msg)

	if e.Subject != "(no subject)" {
		t.Errorf("Subject = %q, want %q", e.Subject, "(no subject)")
	}
	// With no payload the body falls back to the snippet.
	if e.Body != "fallback snippet" {
		t.Errorf("Body = %q, want snippet fallback", e.Body)
	}
}

func TestParseMessageMultipart(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-3",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Multipart"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: b64url("<p>Hello <b>world</b></p>")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64url("Hello world")},
				},
			},
		},
	}

	e := ParseMessage(msg)
	if e.Body != "Hello world" {
		t.Errorf("Body = %q, want plain part preferred", e.Body)
	}
}

func TestParseMessageHTMLOnly(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-4",
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "HTML"},
			},
			Body: &gmail.MessagePartBody{
				Data: b64url("<html><style>p{color:red}</style><body><p>Budget &amp; planning</p></body></html>"),
			},
		},
	}

	e := ParseMessage(msg)
	if !strings.Contains(e.Body, "Budget & planning") {
		t.Errorf("Body = %q, want HTML stripped and entities decoded", e.Body)
	}
	if strings.Contains(e.Body, "<") || strings.Contains(e.Body, "color:red") {
		t.Errorf("Body = %q, markup leaked through", e.Body)
	}
}

func TestParseMessageNormalizesDate(t *testing.T) {
	msg := textMessage("Subj", "a@b.c", "body")
	e := ParseMessage(msg)
	if e.Date != "2026-08-24T09:00:00Z" {
		t.Errorf("Date = %q, want RFC 3339", e.Date)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"rfc2822", "Mon, 24 Aug 2026 09:00:00 -0700", "2026-08-24T09:00:00-07:00"},
		{"unparseable kept", "sometime tuesday", "sometime tuesday"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDate(tt.in); got != tt.want {
				t.Errorf("normalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	msg := textMessage("Subj", "a@b.c", "body")
	if got := HeaderValue(msg, "subject"); got != "Subj" {
		t.Errorf("HeaderValue(subject) = %q, want %q", got, "Subj")
	}
	if got := HeaderValue(msg, "X-Missing"); got != "" {
		t.Errorf("HeaderValue(X-Missing) = %q, want empty", got)
	}
}

func TestDecodeBodyUnpadded(t *testing.T) {
	// Gmail sends base64url without padding, so encoded lengths are often
	// not a multiple of four.
	body := "Hello, this is the email body?>"
	raw := base64.RawURLEncoding.EncodeToString([]byte(body))
	if len(raw)%4 == 0 {
		t.Fatalf("test input %q should not be padding-aligned", raw)
	}
	if got := decodeBody(raw); got != body {
		t.Errorf("decodeBody(%q) = %q, want %q", raw, got, body)
	}
	// Padded input from non-conforming senders still decodes.
	padded := base64.URLEncoding.EncodeToString([]byte(body))
	if got := decodeBody(padded); got != body {
		t.Errorf("decodeBody(padded) = %q, want %q", got, body)
	}
}

func TestDecodeBodyFallsBackToStdEncoding(t *testing.T) {
	std := base64.StdEncoding.EncodeToString([]byte("standard encoded"))
	if got := decodeBody(std); got != "standard encoded" {
		t.Errorf("decodeBody = %q", got)
	}
	// "+/8=" uses the standard alphabet characters base64url rejects.
	if got := decodeBody("+/8="); got != string([]byte{0xfb, 0xff}) {
		t.Errorf("decodeBody(+/8=) = %x, want fbff", got)
	}
	if got := decodeBody("!!not base64!!"); got != "" {
		t.Errorf("decodeBody(garbage) = %q, want empty", got)
	}
}

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "collapses spaces and trims lines",
			in:   "hello    world  \n   next line",
			want: "hello world\nnext line",
		},
		{
			name: "normalizes CRLF",
			in:   "line one\r\nline two",
			want: "line one\nline two",
		},
		{
			name: "collapses blank line runs",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanBody(tt.in); got != tt.want {
				t.Errorf("CleanBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanBodyTruncates(t *testing.T) {
	long := strings.Repeat("a", maxBodyLength+100)
	got := CleanBody(long)
	if len(got) != maxBodyLength+3 {
		t.Errorf("len = %d, want %d", len(got), maxBodyLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated body should end with ellipsis")
	}
}
