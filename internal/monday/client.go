// internal/monday/client.go
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ok-very/autoart/internal/telemetry"
)

const (
	DefaultAPIURL   = "https://api.monday.com/v2"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 100
	maxRetryElapsed = 2 * time.Minute
)

// ErrBoardNotFound is returned when the requested board does not exist or
// the token cannot see it. No partial state accompanies it.
var ErrBoardNotFound = errors.New("monday: board not found")

// Client talks to the monday.com GraphQL API.
type Client struct {
	APIURL     string
	Token      string
	PageSize   int
	HTTPClient *http.Client
}

// NewClient creates a client with default endpoint, timeout, and page size.
func NewClient(token string) *Client {
	return &Client{
		APIURL:   DefaultAPIURL,
		Token:    token,
		PageSize: DefaultPageSize,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// query posts one GraphQL request, retrying transient failures with
// exponential backoff. Rate-limit (429) and 5xx responses are retried;
// everything else fails immediately.
func (c *Client) query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("monday: marshal request: %w", err)
	}

	var data json.RawMessage
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("monday: build request: %w", err))
		}
		req.Header.Set("Authorization", c.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("monday: request failed: %w", err)
		}
		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("monday: read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("monday: API returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("monday: API error: %s (status %d)", string(respBody), resp.StatusCode))
		}

		var parsed gqlResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("monday: parse response: %w", err))
		}
		if len(parsed.Errors) > 0 {
			return backoff.Permanent(fmt.Errorf("monday: GraphQL error: %s", parsed.Errors[0].Message))
		}
		data = parsed.Data
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxRetryElapsed),
	), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return data, nil
}

const boardSchemaQuery = `
query ($boardID: [ID!]) {
  boards(ids: $boardID) {
    id
    name
    items_count
    columns { id title type }
    groups { id title }
  }
}`

// DiscoverBoardSchema fetches a board's columns, groups, and item count in
// one call. Must complete before any item page is requested: column titles
// are needed to label values.
func (c *Client) DiscoverBoardSchema(ctx context.Context, boardID string) (*BoardSchema, error) {
	ctx, span := telemetry.Tracer("monday").Start(ctx, "monday.DiscoverBoardSchema",
		trace.WithAttributes(attribute.String("board.id", boardID)))
	defer span.End()

	data, err := c.query(ctx, boardSchemaQuery, map[string]any{"boardID": []string{boardID}})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Boards []struct {
			ID         string   `json:"id"`
			Name       string   `json:"name"`
			ItemsCount int      `json:"items_count"`
			Columns    []Column `json:"columns"`
			Groups     []Group  `json:"groups"`
		} `json:"boards"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("monday: parse board schema: %w", err)
	}
	if len(payload.Boards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}

	b := payload.Boards[0]
	return &BoardSchema{
		BoardID:   b.ID,
		Name:      b.Name,
		ItemCount: b.ItemsCount,
		Columns:   b.Columns,
		Groups:    b.Groups,
	}, nil
}

const itemsPageQuery = `
query ($boardID: [ID!], $limit: Int!, $cursor: String) {
  boards(ids: $boardID) {
    items_page(limit: $limit, cursor: $cursor) {
      cursor
      items {
        id
        name
        created_at
        updated_at
        group { id }
        creator { id }
        column_values { id text type value column { title } }
        subitems {
          id
          name
          created_at
          updated_at
          column_values { id text type value column { title } }
        }
      }
    }
  }
}`

// FetchItemsPage fetches one page of items with sub-items attached inline.
// Pass an empty cursor for the first page; an empty next cursor signals the
// end. Pages must be requested in cursor order.
func (c *Client) FetchItemsPage(ctx context.Context, boardID, cursor string, pageSize int) (*ItemsPage, error) {
	if pageSize <= 0 {
		pageSize = c.PageSize
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	vars := map[string]any{
		"boardID": []string{boardID},
		"limit":   pageSize,
	}
	if cursor != "" {
		vars["cursor"] = cursor
	}

	data, err := c.query(ctx, itemsPageQuery, vars)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Boards []struct {
			ItemsPage ItemsPage `json:"items_page"`
		} `json:"boards"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("monday: parse items page: %w", err)
	}
	if len(payload.Boards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	page := payload.Boards[0].ItemsPage
	return &page, nil
}

// StreamBoardItems discovers the board schema, then feeds item pages to fn
// one at a time so callers can bound memory on very large boards. Fetching
// stops on the first fn error or when the cursor runs out.
func (c *Client) StreamBoardItems(ctx context.Context, boardID string, fn func(*ItemsPage) error) (*BoardSchema, error) {
	schema, err := c.DiscoverBoardSchema(ctx, boardID)
	if err != nil {
		return nil, err
	}

	cursor := ""
	for {
		page, err := c.FetchItemsPage(ctx, boardID, cursor, c.PageSize)
		if err != nil {
			return nil, err
		}
		if err := fn(page); err != nil {
			return nil, err
		}
		if page.Cursor == "" || len(page.Items) == 0 {
			return schema, nil
		}
		cursor = page.Cursor
	}
}

// FetchBoardTree eagerly materializes a whole board: schema plus all items
// across every page.
func (c *Client) FetchBoardTree(ctx context.Context, boardID string) (*BoardTree, error) {
	ctx, span := telemetry.Tracer("monday").Start(ctx, "monday.FetchBoardTree",
		trace.WithAttributes(attribute.String("board.id", boardID)))
	defer span.End()

	tree := &BoardTree{}
	schema, err := c.StreamBoardItems(ctx, boardID, func(page *ItemsPage) error {
		tree.Items = append(tree.Items, page.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tree.Schema = *schema
	span.SetAttributes(attribute.Int("board.items", len(tree.Items)))
	return tree, nil
}

// FetchWorkspaceTrees materializes several boards concurrently. Pages
// within one board stay sequential (the next cursor is only known after the
// previous page resolves); boards have no ordering dependency on each
// other. Results preserve the input order.
func (c *Client) FetchWorkspaceTrees(ctx context.Context, boardIDs []string) ([]*BoardTree, error) {
	trees := make([]*BoardTree, len(boardIDs))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range boardIDs {
		g.Go(func() error {
			tree, err := c.FetchBoardTree(ctx, id)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}
