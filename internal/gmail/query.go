package gmail

import (
	"fmt"
	"regexp"
	"strings"
)

// validOperators are the Gmail search operators accepted by query validation.
var validOperators = map[string]bool{
	"from":        true,
	"to":          true,
	"cc":          true,
	"bcc":         true,
	"subject":     true,
	"has":         true,
	"is":          true,
	"in":          true,
	"after":       true,
	"before":      true,
	"older_than":  true,
	"newer_than":  true,
	"size":        true,
	"larger":      true,
	"smaller":     true,
	"filename":    true,
	"label":       true,
	"category":    true,
	"deliveredto": true,
	"rfc822msgid": true,
}

// Value sets for operators that only accept fixed values.
var (
	validIsValues = map[string]bool{
		"unread": true, "read": true, "starred": true, "important": true,
		"sent": true, "draft": true, "chat": true, "muted": true, "snoozed": true,
	}
	validHasValues = map[string]bool{
		"attachment": true, "drive": true, "document": true, "spreadsheet": true,
		"presentation": true, "youtube": true, "yellow-star": true, "blue-info": true,
	}
	validInValues = map[string]bool{
		"inbox": true, "trash": true, "spam": true, "sent": true, "draft": true,
		"anywhere": true, "snoozed": true, "important": true,
	}
)

// misspellings maps common operator typos to their correction.
var misspellings = map[string]string{
	"form":     "from",
	"formt":    "from",
	"too":      "to",
	"subjet":   "subject",
	"sublect":  "subject",
	"lable":    "label",
	"categry":  "category",
	"fliename": "filename",
	"si":       "is",
	"haz":      "has",
}

var (
	operatorRe     = regexp.MustCompile(`(\w+):([^\s"]+|"[^"]*")`)
	absoluteDateRe = regexp.MustCompile(`^\d{4}[/-]\d{1,2}[/-]\d{1,2}$`)
	relativeDateRe = regexp.MustCompile(`^\d+[dwmy]$`)
	sizeRe         = regexp.MustCompile(`^\d+[KMG]?$`)
)

// ValidateQuery checks a Gmail search query for malformed operators and
// values. It returns nil for valid queries; otherwise the error describes
// the first problem found, including a correction suggestion when a common
// misspelling is recognized.
func ValidateQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if strings.Count(query, `"`)%2 != 0 {
		return fmt.Errorf("query has unbalanced quotes: %s", query)
	}

	for _, m := range operatorRe.FindAllStringSubmatch(query, -1) {
		op := strings.ToLower(m[1])
		val := strings.Trim(m[2], `"`)

		if !validOperators[op] {
			if fix, ok := misspellings[op]; ok {
				return fmt.Errorf("unknown operator %q: did you mean %q?", op, fix)
			}
			return fmt.Errorf("unknown operator %q", op)
		}

		switch op {
		case "is":
			if !validIsValues[strings.ToLower(val)] {
				return fmt.Errorf("invalid value %q for is:, expected one of unread, read, starred, important, sent, draft, chat, muted, snoozed", val)
			}
		case "has":
			if !validHasValues[strings.ToLower(val)] {
				return fmt.Errorf("invalid value %q for has:, expected one of attachment, drive, document, spreadsheet, presentation, youtube", val)
			}
		case "in":
			if !validInValues[strings.ToLower(val)] {
				return fmt.Errorf("invalid value %q for in:, expected one of inbox, trash, spam, sent, draft, anywhere, snoozed, important", val)
			}
		case "after", "before":
			if !absoluteDateRe.MatchString(val) {
				return fmt.Errorf("invalid date %q for %s:, expected YYYY/MM/DD or YYYY-MM-DD", val, op)
			}
		case "older_than", "newer_than":
			if !relativeDateRe.MatchString(val) {
				return fmt.Errorf("invalid relative date %q for %s:, expected a number followed by d, w, m or y", val, op)
			}
		case "size", "larger", "smaller":
			if !sizeRe.MatchString(val) {
				return fmt.Errorf("invalid size %q for %s:, expected a number optionally followed by K, M or G", val, op)
			}
		}
	}

	return nil
}
