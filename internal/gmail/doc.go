// Package gmail provides a read-only client for retrieving emails to brief on.
//
// This package covers:
//   - Paginated message listing by search query
//   - Full message retrieval with header extraction
//   - Body decoding (base64url with multipart traversal) and cleaning
//     for LLM consumption
//   - Gmail search query validation with correction suggestions
//
// Authentication uses the OAuth token flow from the google package: a
// credentials file identifies the application and a token file caches the
// user grant.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx, "credentials.json", "token.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	emails, err := client.FetchWithQuery(ctx, "is:unread is:important", 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
package gmail
