package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/mailbrief/internal/google"
	"github.com/teemow/mailbrief/internal/instrumentation"
	"github.com/teemow/mailbrief/internal/logging"
	"github.com/teemow/mailbrief/internal/retry"
)

// maxPageSize is the Gmail API limit for messages.list.
const maxPageSize = 500

// Client wraps the Gmail Users service for read-only message retrieval.
type Client struct {
	svc     *gmail.UsersService
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// SetMetrics attaches a metrics recorder. Fetch counts are not recorded
// until one is set.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// NewClient creates a Gmail client authenticated from the given credentials
// and token files.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found: %w", err)
	}
	return NewClientWithHTTP(ctx, httpClient)
}

// NewClientWithHTTP creates a Gmail client from a pre-authenticated HTTP
// client. Useful for tests and callers that manage OAuth themselves.
func NewClientWithHTTP(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{
		svc:    svc.Users,
		logger: logging.WithService(slog.Default(), "gmail"),
	}, nil
}

// ListMessageIDs lists message IDs matching the query with pagination,
// fetching up to maxResults across multiple API calls if necessary.
func (c *Client) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		pageSize := remaining
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := retry.Do(ctx, retry.DefaultPolicy(), func() (*gmail.ListMessagesResponse, error) {
			res, err := req.Do()
			return res, classifyAPIError(err)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := retry.Do(ctx, retry.DefaultPolicy(), func() (*gmail.Message, error) {
		msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
		return msg, classifyAPIError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// FetchWithQuery retrieves up to maxResults emails matching the query,
// decoded and cleaned for downstream summarization. Messages that fail to
// fetch individually are logged and skipped.
func (c *Client) FetchWithQuery(ctx context.Context, query string, maxResults int64) ([]*Email, error) {
	logger := logging.WithOperation(c.logger, "fetch")
	logger.Info("fetching emails", logging.Query(query))

	ids, err := c.ListMessageIDs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	emails := make([]*Email, 0, len(ids))
	for _, id := range ids {
		msg, err := c.GetMessage(ctx, id)
		if err != nil {
			logger.Warn("skipping message", slog.String("message_id", id), logging.Err(err))
			continue
		}
		emails = append(emails, ParseMessage(msg))
	}

	logger.Info("fetched emails", logging.EmailCount(len(emails)))
	if c.metrics != nil {
		c.metrics.RecordEmailsFetched(ctx, len(emails), query)
	}
	return emails, nil
}

// FetchImportantUnread retrieves important unread emails, the default
// briefing input.
func (c *Client) FetchImportantUnread(ctx context.Context, maxResults int64) ([]*Email, error) {
	return c.FetchWithQuery(ctx, "is:important is:unread", maxResults)
}

// TestConnection verifies API access by fetching the user's profile.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.svc.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail connection test failed: %w", err)
	}
	return nil
}

// classifyAPIError maps Gmail API errors onto the retry classification:
// rate limits and server errors retry, auth and not-found errors abort.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retry.ClassifyHTTP(apiErr.Code, err)
	}
	return retry.ClassifyError(err)
}
