package gmail

import (
	"encoding/base64"
	"html"
	"net/mail"
	"regexp"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// maxBodyLength caps the cleaned body passed to summarization. Longer
// bodies blow the prompt budget without improving summaries.
const maxBodyLength = 8000

// Email is a decoded Gmail message reduced to the fields the briefing
// pipeline needs.
type Email struct {
	ID       string
	ThreadID string
	Subject  string
	Sender   string
	Date     string
	Snippet  string
	Body     string
}

// ParseMessage converts a raw Gmail API message into an Email with headers
// extracted and the body decoded and cleaned.
func ParseMessage(msg *gmail.Message) *Email {
	e := &Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		e.Subject = HeaderValue(msg, "Subject")
		e.Sender = HeaderValue(msg, "From")
		e.Date = normalizeDate(HeaderValue(msg, "Date"))
	}
	if e.Subject == "" {
		e.Subject = "(no subject)"
	}
	e.Body = CleanBody(extractBody(msg))
	if e.Body == "" {
		e.Body = e.Snippet
	}
	return e
}

// normalizeDate parses an RFC 2822 Date header into RFC 3339. Unparseable
// values are kept as-is rather than dropped.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}

// HeaderValue returns the value of a header from a message, or "" if absent.
func HeaderValue(m *gmail.Message, header string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// extractBody pulls the message body, preferring text/plain over text/html.
// Multipart messages are walked recursively.
func extractBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}

	var plain, htmlBody string
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Body == nil || part.Body.Data == "" {
			return
		}
		switch part.MimeType {
		case "text/plain":
			if plain == "" {
				plain = decodeBody(part.Body.Data)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = decodeBody(part.Body.Data)
			}
		}
	})

	if plain != "" {
		return plain
	}
	return stripHTML(htmlBody)
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// decodeBody decodes base64url message data. Gmail emits RFC 4648 base64url
// without padding, so padding is stripped before decoding; standard base64 is
// tried as a fallback for non-conforming senders.
func decodeBody(data string) string {
	trimmed := strings.TrimRight(data, "=")
	decoded, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(trimmed)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

var (
	styleScriptRe = regexp.MustCompile(`(?is)<(style|script)[^>]*>.*?</(style|script)>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	spaceRe       = regexp.MustCompile(`[ \t]+`)
	blankLineRe   = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes markup, leaving readable text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = styleScriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	return html.UnescapeString(s)
}

// CleanBody normalizes whitespace and truncates overly long bodies so the
// text is usable as LLM input.
func CleanBody(body string) string {
	if body == "" {
		return ""
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = spaceRe.ReplaceAllString(body, " ")

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	body = strings.Join(lines, "\n")
	body = blankLineRe.ReplaceAllString(body, "\n\n")
	body = strings.TrimSpace(body)

	if len(body) > maxBodyLength {
		body = body[:maxBodyLength] + "..."
	}
	return body
}
