package summary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/gmail"
	"github.com/teemow/mailbrief/internal/logging"
)

// Pauses between consecutive API calls to stay under rate limits.
// Anthropic rate-limits harder than OpenAI, so it gets the longer pause.
const (
	openAIPause    = 500 * time.Millisecond
	anthropicPause = 1 * time.Second
)

// pauseFor returns the pacing delay for a provider.
func pauseFor(provider Provider) time.Duration {
	if provider != nil && provider.Name() == config.ProviderOpenAI {
		return openAIPause
	}
	return anthropicPause
}

const systemPrompt = "You are an assistant that summarizes emails concisely and accurately. " +
	"Always respond in the exact format requested."

// Summarizer turns fetched emails into structured summaries using the
// configured LLM provider, falling back to a heuristic summary when the
// API is unavailable.
type Summarizer struct {
	provider    Provider
	maxTokens   int
	temperature float64
	pause       time.Duration
	logger      *slog.Logger
}

// NewSummarizer creates a Summarizer on top of the given provider.
func NewSummarizer(provider Provider, maxTokens int, temperature float64) *Summarizer {
	return &Summarizer{
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		pause:       pauseFor(provider),
		logger:      logging.WithService(slog.Default(), "summarizer"),
	}
}

// Summarize produces a structured summary for one email. API failures
// degrade to a heuristic fallback rather than failing the run.
func (s *Summarizer) Summarize(ctx context.Context, email *gmail.Email) *EmailSummary {
	logger := logging.WithProvider(s.logger, s.provider.Name())

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      buildPrompt(email),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("summarization failed, using fallback",
			slog.String("email_id", email.ID), logging.Err(err))
		return fallbackSummary(email)
	}

	sum := parseResponse(resp, email)
	logger.Debug("email summarized",
		slog.String("email_id", email.ID),
		slog.String("priority", sum.Priority))
	return sum
}

// SummarizeBatch summarizes emails sequentially with pacing between API
// calls. It never fails outright; individual failures produce fallback
// summaries.
func (s *Summarizer) SummarizeBatch(ctx context.Context, emails []*gmail.Email) []*EmailSummary {
	summaries := make([]*EmailSummary, 0, len(emails))
	for i, email := range emails {
		if i > 0 {
			select {
			case <-ctx.Done():
				// Degrade the rest to fallbacks instead of dropping them.
				for _, rest := range emails[i:] {
					summaries = append(summaries, fallbackSummary(rest))
				}
				return summaries
			case <-time.After(s.pause):
			}
		}
		summaries = append(summaries, s.Summarize(ctx, email))
	}
	return summaries
}

// TestConnection verifies the provider responds to a trivial prompt.
func (s *Summarizer) TestConnection(ctx context.Context) error {
	_, err := s.provider.Complete(ctx, CompletionRequest{
		Prompt:      "Reply with the single word: ok",
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("%s connection test failed: %w", s.provider.Name(), err)
	}
	return nil
}

// Provider returns the underlying provider, for status reporting.
func (s *Summarizer) Provider() Provider {
	return s.provider
}

// buildPrompt renders the structured summarization prompt for one email.
func buildPrompt(email *gmail.Email) string {
	var b strings.Builder
	b.WriteString("Analyze this email and provide a structured summary.\n\n")
	fmt.Fprintf(&b, "From: %s\n", email.Sender)
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Date: %s\n\n", email.Date)
	fmt.Fprintf(&b, "Body:\n%s\n\n", email.Body)
	b.WriteString("Respond in exactly this format:\n")
	b.WriteString("SUMMARY: <2-3 sentence summary>\n")
	b.WriteString("KEY_POINTS:\n- <key point>\n")
	b.WriteString("ACTION_ITEMS:\n- <action item, or 'None'>\n")
	b.WriteString("PRIORITY: <High, Medium or Low>\n")
	return b.String()
}

var (
	summaryRe  = regexp.MustCompile(`(?is)SUMMARY:\s*(.+?)(?:KEY_POINTS:|ACTION_ITEMS:|PRIORITY:|$)`)
	keyPointRe = regexp.MustCompile(`(?is)KEY_POINTS:\s*(.+?)(?:ACTION_ITEMS:|PRIORITY:|$)`)
	actionRe   = regexp.MustCompile(`(?is)ACTION_ITEMS:\s*(.+?)(?:PRIORITY:|$)`)
	priorityRe = regexp.MustCompile(`(?i)PRIORITY:\s*(High|Medium|Low)`)
	bulletRe   = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s*`)
)

// parseResponse extracts the structured sections from a model response.
// Missing sections degrade gracefully rather than erroring.
func parseResponse(resp string, email *gmail.Email) *EmailSummary {
	sum := &EmailSummary{
		EmailID:     email.ID,
		Subject:     email.Subject,
		Sender:      email.Sender,
		Date:        email.Date,
		Priority:    PriorityMedium,
		GeneratedAt: time.Now().UTC(),
	}

	if m := summaryRe.FindStringSubmatch(resp); m != nil {
		sum.Summary = strings.TrimSpace(m[1])
	}
	if sum.Summary == "" {
		sum.Summary = strings.TrimSpace(resp)
	}

	if m := keyPointRe.FindStringSubmatch(resp); m != nil {
		sum.KeyPoints = parseBullets(m[1])
	}
	if m := actionRe.FindStringSubmatch(resp); m != nil {
		sum.ActionItems = parseBullets(m[1])
	}
	if m := priorityRe.FindStringSubmatch(resp); m != nil {
		sum.Priority = normalizePriority(m[1])
	}

	return sum
}

// parseBullets extracts bullet list entries, dropping empty lines and
// placeholder "None" entries.
func parseBullets(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if item == "" || strings.EqualFold(item, "none") {
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizePriority(p string) string {
	switch strings.ToLower(p) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// actionKeywords flag emails that likely need a response.
var actionKeywords = []string{
	"please", "action required", "deadline", "urgent", "asap",
	"respond", "reply", "review", "approve", "confirm", "rsvp",
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)

// fallbackSummary builds a heuristic summary from the raw email when the
// AI call fails: subject and sender, the first few sentences of the body,
// and a keyword scan for likely action items.
func fallbackSummary(email *gmail.Email) *EmailSummary {
	var b strings.Builder
	fmt.Fprintf(&b, "Email from %s regarding %q.", senderName(email.Sender), email.Subject)

	sentences := sentenceRe.FindAllString(email.Body, 3)
	if len(sentences) > 0 {
		b.WriteString(" ")
		for _, s := range sentences {
			b.WriteString(strings.TrimSpace(s))
			b.WriteString(" ")
		}
	}

	sum := &EmailSummary{
		EmailID:     email.ID,
		Subject:     email.Subject,
		Sender:      email.Sender,
		Date:        email.Date,
		Summary:     strings.TrimSpace(b.String()),
		Priority:    PriorityMedium,
		GeneratedAt: time.Now().UTC(),
		Fallback:    true,
	}

	lower := strings.ToLower(email.Subject + " " + email.Body)
	for _, kw := range actionKeywords {
		if strings.Contains(lower, kw) {
			sum.ActionItems = []string{"Review this email, it appears to need a response"}
			sum.Priority = PriorityHigh
			break
		}
	}

	return sum
}

// senderName extracts the display name from a From header, falling back to
// the address itself.
func senderName(from string) string {
	if i := strings.Index(from, "<"); i > 0 {
		name := strings.Trim(strings.TrimSpace(from[:i]), `"`)
		if name != "" {
			return name
		}
	}
	return from
}
