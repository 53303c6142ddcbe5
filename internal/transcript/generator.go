// Package transcript turns daily email summaries into a conversational
// briefing script suitable for reading aloud or feeding to text-to-speech.
package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/teemow/mailbrief/internal/logging"
	"github.com/teemow/mailbrief/internal/summary"
)

const systemPrompt = "You are a friendly assistant who writes short spoken-word " +
	"daily briefings. Write naturally, as if speaking to a colleague. " +
	"No markdown, no headings, no bullet points."

// Generator produces briefing transcripts from email summaries. The AI path
// uses the configured provider; when it fails, a template renders a
// serviceable script from the structured summaries.
type Generator struct {
	provider    summary.Provider
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewGenerator creates a Generator on top of the given provider.
func NewGenerator(provider summary.Provider, maxTokens int, temperature float64) *Generator {
	return &Generator{
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logging.WithService(slog.Default(), "transcript"),
	}
}

// Generate renders a briefing transcript for the given date. API failures
// degrade to the template path rather than failing the run.
func (g *Generator) Generate(ctx context.Context, date time.Time, summaries []*summary.EmailSummary) string {
	if len(summaries) == 0 {
		return emptyDayScript(date)
	}

	resp, err := g.provider.Complete(ctx, summary.CompletionRequest{
		System:      systemPrompt,
		Prompt:      buildPrompt(date, summaries),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		g.logger.Warn("transcript generation failed, using template",
			logging.Provider(g.provider.Name()), logging.Err(err))
		return templateScript(date, summaries)
	}

	script := StripMarkdown(resp)
	if strings.TrimSpace(script) == "" {
		return templateScript(date, summaries)
	}
	return script
}

// buildPrompt renders the transcript prompt from the day's summaries.
func buildPrompt(date time.Time, summaries []*summary.EmailSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a 2-3 minute spoken briefing for %s covering these %d emails.\n",
		date.Format("Monday, January 2"), len(summaries))
	b.WriteString("Start with a short greeting, cover important emails first, ")
	b.WriteString("group related items, and end with the key action items.\n\n")

	for i, s := range summaries {
		fmt.Fprintf(&b, "Email %d (%s priority)\n", i+1, s.Priority)
		fmt.Fprintf(&b, "From: %s\nSubject: %s\nSummary: %s\n", s.Sender, s.Subject, s.Summary)
		if len(s.ActionItems) > 0 {
			fmt.Fprintf(&b, "Action items: %s\n", strings.Join(s.ActionItems, "; "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// intros vary the template phrasing so consecutive items read naturally.
var intros = []string{
	"First up,",
	"Next,",
	"Also,",
	"Importantly,",
	"And finally,",
}

// templateScript renders a briefing without AI assistance: high priority
// first, varied intros, and the top action items consolidated at the end.
func templateScript(date time.Time, summaries []*summary.EmailSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning! Here's your email briefing for %s. ", date.Format("Monday, January 2"))
	fmt.Fprintf(&b, "You have %s to catch up on.\n\n", emailCount(len(summaries)))

	ordered := byPriority(summaries)
	for i, s := range ordered {
		intro := intros[min(i, len(intros)-1)]
		if i == len(ordered)-1 && len(ordered) > 1 {
			intro = "And finally,"
		}
		fmt.Fprintf(&b, "%s %s wrote about %q. %s\n\n", intro, senderName(s.Sender), s.Subject, s.Summary)
	}

	if actions := consolidateActions(ordered, 5); len(actions) > 0 {
		b.WriteString("Before you go, a few things need your attention. ")
		for i, a := range actions {
			fmt.Fprintf(&b, "%d: %s. ", i+1, a)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("That's all for now. Have a great day!")
	return b.String()
}

// emptyDayScript varies the no-email message by weekday.
func emptyDayScript(date time.Time) string {
	day := date.Format("Monday, January 2")
	switch date.Weekday() {
	case time.Monday:
		return fmt.Sprintf("Good morning! It's %s and your inbox is starting the week clean. No important emails to report. Enjoy the fresh start!", day)
	case time.Friday:
		return fmt.Sprintf("Good morning! It's %s and there are no important emails today. Looks like a quiet end to the week. Have a great weekend!", day)
	case time.Saturday, time.Sunday:
		return fmt.Sprintf("Good morning! It's %s and your inbox is quiet. No important emails this weekend. Enjoy your time off!", day)
	default:
		return fmt.Sprintf("Good morning! It's %s and you have no important emails today. Your inbox is all caught up!", day)
	}
}

// byPriority orders summaries high, medium, low, preserving relative order
// within each band.
func byPriority(summaries []*summary.EmailSummary) []*summary.EmailSummary {
	ordered := make([]*summary.EmailSummary, 0, len(summaries))
	for _, want := range []string{summary.PriorityHigh, summary.PriorityMedium, summary.PriorityLow} {
		for _, s := range summaries {
			if s.Priority == want {
				ordered = append(ordered, s)
			}
		}
	}
	// Unrecognized priorities go last rather than disappearing.
	for _, s := range summaries {
		switch s.Priority {
		case summary.PriorityHigh, summary.PriorityMedium, summary.PriorityLow:
		default:
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// consolidateActions collects distinct action items across summaries,
// capped at limit.
func consolidateActions(summaries []*summary.EmailSummary, limit int) []string {
	seen := make(map[string]bool)
	var actions []string
	for _, s := range summaries {
		for _, a := range s.ActionItems {
			key := strings.ToLower(strings.TrimSpace(a))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			actions = append(actions, strings.TrimSpace(a))
			if len(actions) >= limit {
				return actions
			}
		}
	}
	return actions
}

var (
	mdHeadingRe  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	mdEmphasisRe = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	mdCodeRe     = regexp.MustCompile("`+([^`]*)`+")
	mdLinkRe     = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdBulletRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
)

// StripMarkdown removes formatting the model may emit despite instructions,
// since markup reads badly in speech.
func StripMarkdown(s string) string {
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdEmphasisRe.ReplaceAllString(s, "$2")
	s = mdCodeRe.ReplaceAllString(s, "$1")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdBulletRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// senderName extracts the display name from a From header.
func senderName(from string) string {
	if i := strings.Index(from, "<"); i > 0 {
		name := strings.Trim(strings.TrimSpace(from[:i]), `"`)
		if name != "" {
			return name
		}
	}
	return from
}

// emailCount phrases the count for speech.
func emailCount(n int) string {
	if n == 1 {
		return "1 email"
	}
	return fmt.Sprintf("%d emails", n)
}
